package model

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactRoute префикс маршрута, по которому отдаются готовые PDF
const ArtifactRoute = "/static/itinerary/"

// Artifact описывает один сформированный документ
type Artifact struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EntryCount int       `json:"entry_count"`
	PageCount  int       `json:"page_count"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateID генерирует новый UUID для документа, если он еще не установлен
func (a *Artifact) GenerateID() {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
}

func (a *Artifact) FileName() string {
	return a.ID + ".pdf"
}

// Path относительный адрес документа на сервере
func (a *Artifact) Path() string {
	return ArtifactRoute + a.FileName()
}

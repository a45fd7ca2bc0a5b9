package model

import "sort"

// ItineraryEntry одна запись маршрута: дата, место и заметка
type ItineraryEntry struct {
	Date  string `json:"date" yaml:"date"`
	Place string `json:"place" yaml:"place"`
	Memo  string `json:"memo,omitempty" yaml:"memo,omitempty"`
}

// SortEntries возвращает копию записей, отсортированную по дате.
// Дата сравнивается как строка, порядок равных записей сохраняется.
func SortEntries(items []ItineraryEntry) []ItineraryEntry {
	sorted := make([]ItineraryEntry, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

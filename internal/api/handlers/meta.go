package handlers

import "net/http"

type eventTypeInfo struct {
	Label       string `json:"label"`
	LabelNepali string `json:"label_nepali"`
	Icon        string `json:"icon"`
}

// eventTypes is the static label table served to clients for rendering
// filters and badges. Keys match the values accepted by the event_type
// listing filter.
var eventTypes = map[string]eventTypeInfo{
	"rally":      {Label: "Rally", LabelNepali: "र्‍याली"},
	"townhall":   {Label: "Town Hall", LabelNepali: "टाउन हल"},
	"march":      {Label: "March", LabelNepali: "मार्च"},
	"meeting":    {Label: "Meeting", LabelNepali: "बैठक"},
	"assembly":   {Label: "Assembly", LabelNepali: "सभा"},
	"canvassing": {Label: "Canvassing", LabelNepali: "घरदैलो"},
	"conference": {Label: "Conference", LabelNepali: "सम्मेलन"},
	"debate":     {Label: "Debate", LabelNepali: "बहस"},
}

func EventTypes() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eventTypes)
	})
}

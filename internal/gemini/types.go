package gemini

// unitData is one item in the JSON payload sent to the model. IDs are the
// unit's slot in the request; the model echoes them back so responses can be
// mapped even when items are dropped.
type unitData struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type requestData struct {
	Units []unitData `json:"units"`
}

type translatedUnit struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type responseData struct {
	Translations []translatedUnit `json:"translations"`
}

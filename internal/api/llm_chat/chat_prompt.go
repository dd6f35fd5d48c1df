package llmChat

import (
	"encoding/json"
	"fmt"
)

const (
	// FallbackMessage is returned whenever the assistant cannot be reached.
	FallbackMessage = "Scusa! Ho problemi a connettermi alle Muse al momento. Riprova più tardi."

	noItineraryContext = "Nessun itinerario generato ancora."
	mapsSourceTitle    = "Google Maps"
)

func itineraryContext(stopNames []string) string {
	if len(stopNames) == 0 {
		return noItineraryContext
	}
	b, err := json.Marshal(stopNames)
	if err != nil {
		return noItineraryContext
	}
	return "Contesto Itinerario Corrente: " + string(b)
}

func getChatSystemInstruction(stopNames []string) string {
	return fmt.Sprintf(`Sei 'BerniniBot', un esperto d'arte barocca e guida di Roma spiritoso e colto.
Aiuta l'utente con storia, logistica, consigli sul cibo e informazioni sui biglietti.

Contesto:
%s

Se l'utente chiede biglietti, orari di apertura o eventi attuali, usa Google Search.
Se l'utente chiede indicazioni o luoghi vicini, usa Google Maps.
Mantieni le risposte concise e utili.
RISPONDI SEMPRE IN ITALIANO.`, itineraryContext(stopNames))
}

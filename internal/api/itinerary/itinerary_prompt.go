package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	StartLandmark = "Basilica di San Pietro"
	EndLandmark   = "Galleria Borghese"
	DefaultTitle  = "Capolavori del Barocco Romano"
)

// MandatoryArtists must each be covered by at least one stop.
var MandatoryArtists = []string{"Francesco Borromini", "Gian Lorenzo Bernini", "Caravaggio", "Pietro da Cortona", "Andrea Pozzo"}

var itinerarySystemInstruction = fmt.Sprintf(`
Sei un esperto storico dell'arte romana e guida turistica specializzata nel periodo barocco.
Il tuo compito è creare un itinerario di un giorno a Roma logico e geograficamente ottimizzato.

REGOLE CRITICHE:
1. Punto di partenza: %s (Vaticano).
2. Punto di arrivo: %s.
3. DEVE includere opere di: %s.
4. Le tappe suggerite devono essere geograficamente logiche (minimizzando i tempi di spostamento).
5. Fornisci orari specifici di arrivo e partenza basati sull'orario di inizio dell'utente e sul ritmo.
6. L'OUTPUT DEVE ESSERE IN ITALIANO.

Formato Output:
DEVI restituire un oggetto JSON valido. Non avvolgerlo in blocchi di codice markdown.
Il JSON deve seguire questa struttura:
{
  "title": "Stringa (Titolo in Italiano)",
  "stops": [
    {
      "name": "Stringa (Nome della chiesa/museo)",
      "coordinates": { "lat": Number, "lng": Number },
      "description": "Stringa (Breve descrizione dell'opera in Italiano)",
      "arrivalTime": "HH:MM",
      "departureTime": "HH:MM",
      "artists": ["Stringa"],
      "tips": "Stringa opzionale (consiglio pratico)",
      "type": "start" | "stop" | "end"
    }
  ]
}
La prima tappa ha type "start", l'ultima ha type "end", tutte le altre "stop".
`, StartLandmark, EndLandmark, strings.Join(MandatoryArtists, ", "))

var paceLabels = map[types.Pace]string{
	types.PaceRelaxed:  "rilassato",
	types.PaceModerate: "moderato",
	types.PaceIntense:  "intenso",
}

func getItineraryPrompt(prefs types.UserPreferences) string {
	artists := "tutti i principali maestri del Barocco"
	if len(prefs.FocusArtists) > 0 {
		artists = strings.Join(prefs.FocusArtists, ", ")
	}
	accessibility := "No"
	if prefs.Accessibility {
		accessibility = "Sì, evita le scale dove possibile"
	}
	pace, ok := paceLabels[prefs.Pace]
	if !ok {
		pace = string(prefs.Pace)
	}

	return fmt.Sprintf(`
    Crea un itinerario di 1 giorno nella Roma Barocca.
    Orario di inizio: %s
    Ritmo: %s
    Partecipanti: %d
    Esigenze di accessibilità: %s
    Artisti focus: %s

    Includi tappe specifiche per:
    1. San Pietro (Inizio)
    2. Opere di Borromini (es. San Carlo alle Quattro Fontane, Sant'Ivo)
    3. Opere di Bernini (es. Sant'Andrea al Quirinale, Piazza Navona)
    4. Caravaggio (es. San Luigi dei Francesi)
    5. Pietro da Cortona (es. Santi Luca e Martina o Palazzo Barberini)
    6. Andrea Pozzo (Sant'Ignazio)
    7. %s (Fine)

    Usa Google Maps per verificare luoghi e coordinate.
`, prefs.StartTime, pace, prefs.Participants, accessibility, artists, EndLandmark)
}

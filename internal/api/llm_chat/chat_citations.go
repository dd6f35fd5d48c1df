package llmChat

import (
	"github.com/samber/lo"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/roma-barocca-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

// extractSources turns grounding chunks into citations, keeping upstream
// order. Chunks with neither a web nor a maps URI are dropped.
func extractSources(resp *genai.GenerateContentResponse) []types.Source {
	candidate := generativeAI.FirstCandidate(resp)
	if candidate == nil || candidate.GroundingMetadata == nil {
		return []types.Source{}
	}
	return lo.FilterMap(candidate.GroundingMetadata.GroundingChunks, func(chunk *genai.GroundingChunk, _ int) (types.Source, bool) {
		if chunk == nil {
			return types.Source{}, false
		}
		if chunk.Web != nil && chunk.Web.URI != "" {
			return types.Source{Title: chunk.Web.Title, URI: chunk.Web.URI}, true
		}
		if chunk.Maps != nil && chunk.Maps.URI != "" {
			title := chunk.Maps.Title
			if title == "" {
				title = mapsSourceTitle
			}
			return types.Source{Title: title, URI: chunk.Maps.URI}, true
		}
		return types.Source{}, false
	})
}

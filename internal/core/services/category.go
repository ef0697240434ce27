package services

import "github.com/custodia-labs/arkeo/internal/core/domain"

// categoryOrder breaks ties between equally represented categories.
var categoryOrder = []domain.ConnectorCategory{
	domain.CategoryMuseums,
	domain.CategoryMedia,
	domain.CategoryMaps,
	domain.CategoryModels,
	domain.CategoryTexts,
	domain.CategoryScholarship,
	domain.CategoryGazetteers,
}

var typeCategory = map[domain.ContentType]domain.ConnectorCategory{
	domain.ContentTypeArtifact:       domain.CategoryMuseums,
	domain.ContentTypeArtwork:        domain.CategoryMuseums,
	domain.ContentTypeCoin:           domain.CategoryMuseums,
	domain.ContentTypePhoto:          domain.CategoryMedia,
	domain.ContentTypeVideo:          domain.CategoryMedia,
	domain.ContentTypeAudio:          domain.CategoryMedia,
	domain.ContentTypeMap:            domain.CategoryMaps,
	domain.ContentTypeModel3D:        domain.CategoryModels,
	domain.ContentTypeInscription:    domain.CategoryTexts,
	domain.ContentTypePrimaryText:    domain.CategoryTexts,
	domain.ContentTypeManuscript:     domain.CategoryTexts,
	domain.ContentTypeDocument:       domain.CategoryTexts,
	domain.ContentTypePaper:          domain.CategoryScholarship,
	domain.ContentTypeBook:           domain.CategoryScholarship,
	domain.ContentTypePlace:          domain.CategoryGazetteers,
	domain.ContentTypePeriod:         domain.CategoryGazetteers,
	domain.ContentTypeVocabularyTerm: domain.CategoryGazetteers,
}

// Categorize picks a display category from the declared content types:
// the category most of them fall into wins.
func Categorize(types []domain.ContentType) domain.ConnectorCategory {
	counts := make(map[domain.ConnectorCategory]int)
	for _, t := range types {
		if c, ok := typeCategory[t]; ok {
			counts[c]++
		}
	}

	best, bestCount := domain.CategoryGeneral, 0
	for _, c := range categoryOrder {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

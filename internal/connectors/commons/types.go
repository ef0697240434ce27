package commons

import (
	"sort"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

type queryResponse struct {
	Continue map[string]any `json:"continue"`
	Error    *apiError      `json:"error"`
	Query    struct {
		Pages []filePage `json:"pages"`
	} `json:"query"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) Error() string {
	return "commons: " + e.Code + ": " + e.Info
}

// ErrorKind implements domain.KindedError.
func (e *apiError) ErrorKind() domain.ErrorKind {
	return domain.ErrorKindUpstream
}

type filePage struct {
	PageID      int          `json:"pageid"`
	Title       string       `json:"title"`
	Index       int          `json:"index"`
	Missing     bool         `json:"missing"`
	ImageInfo   []imageInfo  `json:"imageinfo"`
	Coordinates []coordinate `json:"coordinates"`
}

type imageInfo struct {
	URL            string      `json:"url"`
	DescriptionURL string      `json:"descriptionurl"`
	ThumbURL       string      `json:"thumburl"`
	Mime           string      `json:"mime"`
	User           string      `json:"user"`
	ExtMetadata    extMetadata `json:"extmetadata"`
}

type coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type extMetadata map[string]struct {
	Value any `json:"value"`
}

// value returns a metadata field as a string. Some fields are numeric.
func (m extMetadata) value(key string) string {
	s, _ := m[key].Value.(string)
	return s
}

func sortByIndex(pages []filePage) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
}

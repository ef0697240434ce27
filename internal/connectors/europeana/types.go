package europeana

type searchResponse struct {
	Success      bool     `json:"success"`
	Error        string   `json:"error"`
	ItemsCount   int      `json:"itemsCount"`
	TotalResults int      `json:"totalResults"`
	Items        []record `json:"items"`
}

type record struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	GUID              string   `json:"guid"`
	Title             []string `json:"title"`
	DCDescription     []string `json:"dcDescription"`
	DCCreator         []string `json:"dcCreator"`
	EDMPreview        []string `json:"edmPreview"`
	EDMIsShownBy      []string `json:"edmIsShownBy"`
	Year              []string `json:"year"`
	EDMPlaceLatitude  []string `json:"edmPlaceLatitude"`
	EDMPlaceLongitude []string `json:"edmPlaceLongitude"`
	Country           []string `json:"country"`
	Rights            []string `json:"rights"`
	DataProvider      []string `json:"dataProvider"`
}

type recordResponse struct {
	Success bool         `json:"success"`
	Object  recordObject `json:"object"`
}

type recordObject struct {
	About        string        `json:"about"`
	Type         string        `json:"type"`
	Title        []string      `json:"title"`
	Proxies      []proxy       `json:"proxies"`
	Aggregations []aggregation `json:"aggregations"`
}

type proxy struct {
	DCTitle       map[string][]string `json:"dcTitle"`
	DCDescription map[string][]string `json:"dcDescription"`
	DCCreator     map[string][]string `json:"dcCreator"`
}

type aggregation struct {
	EDMIsShownBy string    `json:"edmIsShownBy"`
	EDMRights    langValue `json:"edmRights"`
}

// langValue is a language map such as {"def": ["http://..."]}.
type langValue map[string][]string

func (l langValue) first() string {
	return firstLang(l)
}

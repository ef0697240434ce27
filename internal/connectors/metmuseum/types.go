package metmuseum

import "github.com/custodia-labs/arkeo/internal/connectors/rest"

// searchResponse is returned by /search and /objects.
type searchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// object is returned by /objects/{id}.
type object struct {
	ObjectID          int    `json:"objectID"`
	IsPublicDomain    bool   `json:"isPublicDomain"`
	PrimaryImage      string `json:"primaryImage"`
	PrimaryImageSmall string `json:"primaryImageSmall"`
	Department        string `json:"department"`
	ObjectName        string `json:"objectName"`
	Title             string `json:"title"`
	Culture           string `json:"culture"`
	Period            string `json:"period"`
	Dynasty           string `json:"dynasty"`
	Reign             string `json:"reign"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ArtistULANURL     string `json:"artistULAN_URL"`
	ObjectDate        string `json:"objectDate"`
	ObjectBeginDate   int    `json:"objectBeginDate"`
	ObjectEndDate     int    `json:"objectEndDate"`
	Medium            string `json:"medium"`
	Dimensions        string `json:"dimensions"`
	CreditLine        string `json:"creditLine"`
	City              string `json:"city"`
	Region            string `json:"region"`
	Country           string `json:"country"`
	Excavation        string `json:"excavation"`
	Classification    string `json:"classification"`
	ObjectURL         string `json:"objectURL"`
}

func isNotFound(err error) bool {
	return rest.IsNotFound(err)
}

package wikidata

// wd:Q839954 is "archaeological site"; P625 coordinates, P18 image, P17 country.

const searchTemplate = `SELECT ?item ?itemLabel ?itemDescription ?coord ?image ?countryLabel WHERE {
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "www.wikidata.org";
                    wikibase:api "EntitySearch";
                    mwapi:search "%s";
                    mwapi:language "en".
    ?item wikibase:apiOutputItem mwapi:item.
  }
  ?item wdt:P31/wdt:P279* wd:Q839954.
  OPTIONAL { ?item wdt:P625 ?coord. }
  OPTIONAL { ?item wdt:P18 ?image. }
  OPTIONAL { ?item wdt:P17 ?country. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT %d
OFFSET %d`

const aroundTemplate = `SELECT ?item ?itemLabel ?itemDescription ?coord ?image ?countryLabel WHERE {
  SERVICE wikibase:around {
    ?item wdt:P625 ?coord.
    bd:serviceParam wikibase:center "Point(%s %s)"^^geo:wktLiteral;
                    wikibase:radius "%s".
  }
  ?item wdt:P31/wdt:P279* wd:Q839954.
  OPTIONAL { ?item wdt:P18 ?image. }
  OPTIONAL { ?item wdt:P17 ?country. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT %d`

const entityTemplate = `SELECT ?item ?itemLabel ?itemDescription ?coord ?image ?countryLabel WHERE {
  VALUES ?item { wd:%s }
  OPTIONAL { ?item wdt:P625 ?coord. }
  OPTIONAL { ?item wdt:P18 ?image. }
  OPTIONAL { ?item wdt:P17 ?country. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 1`

type sparqlResponse struct {
	Results struct {
		Bindings []binding `json:"bindings"`
	} `json:"results"`
}

type binding map[string]struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (b binding) value(key string) string {
	return b[key].Value
}

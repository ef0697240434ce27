package connectors

import (
	"github.com/custodia-labs/arkeo/internal/connectors/ads"
	"github.com/custodia-labs/arkeo/internal/connectors/britishmuseum"
	"github.com/custodia-labs/arkeo/internal/connectors/commons"
	"github.com/custodia-labs/arkeo/internal/connectors/europeana"
	"github.com/custodia-labs/arkeo/internal/connectors/metmuseum"
	"github.com/custodia-labs/arkeo/internal/connectors/wikidata"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
)

// Builtin returns every connector shipped with arkeo, in display order.
func Builtin() []driven.Registration {
	return []driven.Registration{
		metmuseum.Registration(),
		europeana.Registration(),
		wikidata.Registration(),
		commons.Registration(),
		ads.Registration(),
		britishmuseum.Registration(),
	}
}

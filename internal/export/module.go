package export

import "go.uber.org/fx"

// Module provides the exporter and importer for fx injection.
var Module = fx.Options(
	fx.Provide(NewExporter, NewImporter),
)

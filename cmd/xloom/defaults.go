package main

// DefaultModules lists the import paths of all first-party loom modules.
// xloom includes these by default unless --only restricts the selection.
var DefaultModules = []string{
	"github.com/loreweaver/loom/internal/gateway",
	"github.com/loreweaver/loom/internal/maintenance",
	"github.com/loreweaver/loom/internal/telemetry",
	"github.com/loreweaver/loom/internal/weaver",
	"github.com/loreweaver/loom/modules/provider/openai",
	"github.com/loreweaver/loom/modules/storage/bolt",
	"github.com/loreweaver/loom/modules/storage/sqlite",
}

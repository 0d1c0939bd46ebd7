package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Hydration Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryHydration,
		Message:    "hydration fragment not fully consumed",
		Detail:     "After hydrating a component's output, physical nodes remained inside its boundary markers. The server and client disagree on the tree shape.",
		Suggestion: "Make sure the component renders the same tree on the server and the client, and that no markup was altered between render and hydration.",
		DocURL:     "https://loomui.dev/docs/errors/E001",
	},
	"E002": {
		Category:   CategoryHydration,
		Message:    "hydration node mismatch",
		Detail:     "The next pre-existing physical node does not match the virtual node being hydrated.",
		Suggestion: "Render the identical tree on both sides; conditional content must use the saved state block, not environment checks.",
		DocURL:     "https://loomui.dev/docs/errors/E002",
	},
	"E003": {
		Category:   CategoryHydration,
		Message:    "missing hydration marker",
		Detail:     "Expected a boundary marker comment in the pre-rendered markup but found something else.",
		Suggestion: "Enable hydratable rendering on the server (render.Config.Hydratable) when the page will be hydrated.",
		DocURL:     "https://loomui.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryHydration,
		Message:  "invalid suspense fallback state",
		Detail:   "A suspense boundary held a hydration-mode fallback where a constructed fallback was required, or vice versa.",
		DocURL:   "https://loomui.dev/docs/errors/E004",
	},
	"E005": {
		Category:   CategoryHydration,
		Message:    "saved state restore failed",
		Detail:     "A component's LoadState rejected the data the server embedded in the state block.",
		Suggestion: "Keep SaveState and LoadState symmetric, and redeploy server and client together when the state shape changes.",
		DocURL:     "https://loomui.dev/docs/errors/E005",
	},

	// ============================================
	// Reconcile Errors (E100-E199)
	// ============================================

	"E101": {
		Category:   CategoryReconcile,
		Message:    "suspended outside a suspense boundary",
		Detail:     "A component reported a pending suspension but no ancestor suspense boundary exists to coordinate it.",
		Suggestion: "Wrap the suspending component in vtree.Suspense with a fallback.",
		DocURL:     "https://loomui.dev/docs/errors/E101",
	},
	"E102": {
		Category:   CategoryReconcile,
		Message:    "portal target missing",
		Detail:     "A portal node has no mount element to render into.",
		Suggestion: "Set the Mount element when constructing the portal node.",
		DocURL:     "https://loomui.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryReconcile,
		Message:  "component render failed",
		Detail:   "A component's render function returned an error that is not a suspension.",
		DocURL:   "https://loomui.dev/docs/errors/E103",
	},

	// ============================================
	// Render Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryRender,
		Message:  "server render cancelled",
		Detail:   "The request context was cancelled while waiting for a suspension to resume.",
		DocURL:   "https://loomui.dev/docs/errors/E201",
	},

	// ============================================
	// Config Errors (E300-E399)
	// ============================================

	"E301": {
		Category:   CategoryConfig,
		Message:    "configuration file not found",
		Suggestion: "Create a loom.yaml in the project root or pass --config.",
		DocURL:     "https://loomui.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "invalid configuration",
		DocURL:   "https://loomui.dev/docs/errors/E302",
	},

	// ============================================
	// Export Errors (E400-E499)
	// ============================================

	"E401": {
		Category:   CategoryExport,
		Message:    "export cache unavailable",
		Detail:     "The bbolt page cache could not be opened.",
		Suggestion: "Check the cache path in loom.yaml and its directory permissions.",
		DocURL:     "https://loomui.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategoryExport,
		Message:  "publish failed",
		Detail:   "Uploading exported pages to the configured bucket failed.",
		DocURL:   "https://loomui.dev/docs/errors/E402",
	},
}

// Register adds or replaces an error template. Intended for host
// applications extending the code space.
func Register(code string, tmpl ErrorTemplate) {
	registry[code] = tmpl
}

package authz

// Resources managed by the content API.
const (
	ResourceContent     Resource = "content"
	ResourceMedia       Resource = "media"
	ResourceContentType Resource = "content-type"
	ResourceRole        Resource = "role"
	ResourceWebhook     Resource = "webhook"
)

// Actions defined over the default resources.
const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

// DefaultCatalog returns the stock CMS catalog: the standard resources and
// CRUD+publish actions, with the usual implication edges (destructive and
// publishing actions imply the weaker ones they subsume) and the system role
// levels registered by name.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		WithResources(
			ResourceContent,
			ResourceMedia,
			ResourceContentType,
			ResourceRole,
			ResourceWebhook,
		),
		WithActions(
			ActionCreate,
			ActionRead,
			ActionUpdate,
			ActionDelete,
			ActionPublish,
		),
		WithEdge(ActionDelete, ActionUpdate),
		WithEdge(ActionUpdate, ActionRead),
		WithEdge(ActionPublish, ActionUpdate),
		WithEdge(ActionCreate, ActionRead),
		WithLevel("super_admin", LevelSuperAdmin),
		WithLevel("org_admin", LevelOrgAdmin),
		WithLevel("admin", LevelAdmin),
		WithLevel("editor", LevelEditor),
		WithLevel("contributor", LevelContributor),
		WithLevel("viewer", LevelViewer),
	)
	if err != nil {
		// The default catalog is static data; failing validation is a bug.
		panic(err)
	}
	return c
}

package feed

// RootHook contributes extra <link> elements to a feed root.
type RootHook interface {
	RootLinks(t Type, meta Metadata) []Link
}

// RootHookFunc adapts a function to RootHook.
type RootHookFunc func(t Type, meta Metadata) []Link

func (fn RootHookFunc) RootLinks(t Type, meta Metadata) []Link {
	return fn(t, meta)
}

// HubLinks advertises a WebSub hub. RSS feeds get a self link and a hub link,
// Atom feeds only the hub link. Nothing is emitted when Hub is empty.
type HubLinks struct {
	Hub string
}

func (h HubLinks) RootLinks(t Type, meta Metadata) []Link {
	if h.Hub == "" {
		return nil
	}
	if t == RSS {
		return []Link{
			{Rel: "self", Href: meta.FeedURL},
			{Rel: "hub", Href: h.Hub},
		}
	}
	return []Link{{Rel: "hub", Href: h.Hub}}
}

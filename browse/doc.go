// Package browse implements continuous browsing of paginated movie lists.
//
// A Service owns one browsing session at a time. Selecting a list fetches
// its first two pages; pages may complete in any order but their items are
// published in page order, each identifier once per session. Visibility
// events from the presentation layer move a cursor through the published
// items, and the next page is requested once the cursor passes a fraction
// of everything requested so far.
//
// Detail records and poster images are resolved per item on demand and
// reported through the Subscriber interface. A failed page discards the
// session; a failed item resolution affects that item only.
//
// # Usage
//
//	svc := browse.New(client, logger, browse.WithPrefetchThreshold(0.75))
//	defer svc.Close(ctx)
//
//	svc.Subscribe(browse.Funcs{
//		NewItems: func(list catalog.ListKind, items []catalog.Item) {
//			for _, item := range items {
//				svc.ItemBecameVisible(item.ID)
//			}
//		},
//	})
//	svc.SelectList(catalog.ListPopular)
package browse

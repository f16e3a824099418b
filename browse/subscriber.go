package browse

import "github.com/s0up4200/marquee/catalog"

// Subscriber receives the service's notifications. Every method is called
// on the service's owner goroutine, in notification order; implementations
// must not block. Calling back into the service from a notification is
// allowed.
type Subscriber interface {
	// OnNewItems delivers one publish batch of the current list
	OnNewItems(list catalog.ListKind, items []catalog.Item)

	// OnGenresReady delivers the sorted genre list after each successful load
	OnGenresReady(genres []catalog.Genre)

	// OnDetailReady delivers a resolved detail record
	OnDetailReady(detail catalog.Detail)

	// OnItemUpdated delivers an item whose poster has been resolved
	OnItemUpdated(item catalog.Item)

	// OnSessionError reports a failed page fetch; the session is discarded
	OnSessionError(list catalog.ListKind, err error)

	// OnItemError reports a failed detail or poster resolution
	OnItemError(id int, err error)
}

// Funcs adapts optional functions to the Subscriber interface
type Funcs struct {
	NewItems     func(list catalog.ListKind, items []catalog.Item)
	GenresReady  func(genres []catalog.Genre)
	DetailReady  func(detail catalog.Detail)
	ItemUpdated  func(item catalog.Item)
	SessionError func(list catalog.ListKind, err error)
	ItemError    func(id int, err error)
}

func (f Funcs) OnNewItems(list catalog.ListKind, items []catalog.Item) {
	if f.NewItems != nil {
		f.NewItems(list, items)
	}
}

func (f Funcs) OnGenresReady(genres []catalog.Genre) {
	if f.GenresReady != nil {
		f.GenresReady(genres)
	}
}

func (f Funcs) OnDetailReady(detail catalog.Detail) {
	if f.DetailReady != nil {
		f.DetailReady(detail)
	}
}

func (f Funcs) OnItemUpdated(item catalog.Item) {
	if f.ItemUpdated != nil {
		f.ItemUpdated(item)
	}
}

func (f Funcs) OnSessionError(list catalog.ListKind, err error) {
	if f.SessionError != nil {
		f.SessionError(list, err)
	}
}

func (f Funcs) OnItemError(id int, err error) {
	if f.ItemError != nil {
		f.ItemError(id, err)
	}
}

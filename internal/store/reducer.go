package store

import (
	"slices"

	"grimm.is/rampart/internal/model"
)

// Reduce returns the state that results from applying a to s.
//
// Reduce is pure: s is not modified and no slice reachable from s is
// written to. Actions that match nothing (an update, delete or toggle for
// an absent id, an install for an unknown update) return s unchanged.
func Reduce(s State, a Action) State {
	switch a.Collection() {
	case model.KindFirewall:
		s.Firewall = reduceCollection(s.Firewall, a)
	case model.KindVPN:
		s.VPN = reduceCollection(s.VPN, a)
	case model.KindNetwork:
		s.Network = reduceCollection(s.Network, a)
	case model.KindUsers:
		s.Users = reduceCollection(s.Users, a)
	case model.KindSystem:
		s.System = reduceSystem(s.System, a)
	case model.KindSession:
		s.Session = reduceSession(s.Session, a)
	}
	return s
}

func reduceCollection[T model.Record[T]](c Collection[T], a Action) Collection[T] {
	switch a := a.(type) {
	case FetchPending[T]:
		c.Loading = true
		c.Error = ""
	case FetchFulfilled[T]:
		c.Items = cloneOrEmpty(a.Items)
		c.Loading = false
	case FetchRejected[T]:
		c.Loading = false
		c.Error = a.Message
	case Created[T]:
		// Ids stay unique: a create that reuses an id replaces in place.
		if i := indexOf(c.Items, a.Record.RecordID()); i >= 0 {
			c.Items = replaceAt(c.Items, i, a.Record)
			break
		}
		items := make([]T, len(c.Items), len(c.Items)+1)
		copy(items, c.Items)
		c.Items = append(items, a.Record)
	case Updated[T]:
		if i := indexOf(c.Items, a.Record.RecordID()); i >= 0 {
			c.Items = replaceAt(c.Items, i, a.Record)
		}
	case Deleted[T]:
		if i := indexOf(c.Items, a.ID); i >= 0 {
			c.Items = slices.Delete(slices.Clone(c.Items), i, i+1)
		}
	case Toggled[T]:
		if i := indexOf(c.Items, a.ID); i >= 0 {
			c.Items = replaceAt(c.Items, i, c.Items[i].WithEnabled(a.Enabled))
		}
	case ErrorCleared:
		c.Error = ""
	}
	return c
}

func reduceSystem(s SystemState, a Action) SystemState {
	switch a := a.(type) {
	case InfoPending, UpdatesPending:
		s.Loading = true
		s.Error = ""
	case InfoFulfilled:
		info := a.Info
		s.Info = &info
		s.Loading = false
	case UpdatesFulfilled:
		s.Updates = cloneOrEmpty(a.Updates)
		s.Loading = false
	case InfoRejected:
		s.Loading = false
		s.Error = a.Message
	case UpdatesRejected:
		s.Loading = false
		s.Error = a.Message
	case UpdateInstalled:
		i := slices.IndexFunc(s.Updates, func(u model.Update) bool { return u.ID == a.ID })
		if i < 0 {
			break
		}
		updates := make([]model.Update, len(s.Updates))
		for j, u := range s.Updates {
			u.Installed = j == i
			updates[j] = u
		}
		s.Updates = updates
		if s.Info != nil {
			info := *s.Info
			info.Version = updates[i].Version
			s.Info = &info
		}
	case ErrorCleared:
		s.Error = ""
	}
	return s
}

func reduceSession(s SessionState, a Action) SessionState {
	switch a := a.(type) {
	case LoginPending:
		s.Loading = true
		s.Error = ""
	case LoginFulfilled:
		user := a.User
		s.User = &user
		s.Authenticated = true
		s.Loading = false
	case LoginRejected:
		s.Loading = false
		s.Error = a.Message
	case LoggedOut:
		s.User = nil
		s.Authenticated = false
	case ErrorCleared:
		s.Error = ""
	}
	return s
}

func indexOf[T model.Record[T]](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.RecordID() == id })
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

func cloneOrEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}

package storage

import (
	"sort"

	"github.com/rpsarena/rps-arena-go/internal/model"
)

// RankUsers sorts users by win rate descending, then wins descending, and
// truncates to limit. Backends without a native ranking query use this.
func RankUsers(users []*model.User, limit int) []*model.User {
	sort.SliceStable(users, func(i, j int) bool {
		ri, rj := users[i].WinRate(), users[j].WinRate()
		if ri != rj {
			return ri > rj
		}
		return users[i].Wins > users[j].Wins
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users
}

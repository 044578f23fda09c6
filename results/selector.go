package results

import (
	"fmt"
	"strings"

	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/srvcerror"
)

type selectorKind int

const (
	selectAll selectorKind = iota
	selectID
	selectTitle
)

// Selector scopes an export to some leaderboards of a competition.
type Selector struct {
	kind  selectorKind
	id    int64
	title string
}

func All() Selector                 { return Selector{kind: selectAll} }
func ByID(id int64) Selector        { return Selector{kind: selectID, id: id} }
func ByTitle(query string) Selector { return Selector{kind: selectTitle, title: query} }

func (s Selector) String() string {
	switch s.kind {
	case selectID:
		return fmt.Sprintf("id=%d", s.id)
	case selectTitle:
		return "title=" + s.title
	}
	return "all"
}

// Apply keeps the matching leaderboards in their given order. The id and
// title forms fail with not found when nothing matches.
func (s Selector) Apply(lbs []leaderboard.Leaderboard) ([]leaderboard.Leaderboard, error) {
	var res []leaderboard.Leaderboard
	switch s.kind {
	case selectAll:
		return lbs, nil
	case selectID:
		for _, lb := range lbs {
			if lb.ID == s.id {
				res = append(res, lb)
			}
		}
	case selectTitle:
		res = s.matchTitle(lbs)
	}
	if len(res) == 0 {
		return nil, srvcerror.ErrNotFound(fmt.Sprintf("no leaderboard matches %s", s))
	}
	return res, nil
}

func (s Selector) matchTitle(lbs []leaderboard.Leaderboard) []leaderboard.Leaderboard {
	// a full display key picks exactly that leaderboard
	if title, id, ok := ParseKey(s.title); ok {
		for _, lb := range lbs {
			if lb.ID == id && lb.Title == title {
				return []leaderboard.Leaderboard{lb}
			}
		}
	}

	var res []leaderboard.Leaderboard
	for _, lb := range lbs {
		if strings.Contains(lb.Title, s.title) {
			res = append(res, lb)
		}
	}
	return res
}

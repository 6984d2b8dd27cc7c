package ui

import (
	"carlens/internal/domain"
)

// branchMsg carries the outcome of one lookup branch back into Update
type branchMsg struct {
	event domain.BranchEvent
}

// pagerMsg reports that the external pager exited
type pagerMsg struct {
	err error
}

// clearStatusMsg clears the transient status line
type clearStatusMsg struct{}

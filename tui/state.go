package tui

type state int

const (
	loadingState state = iota
	errorState
	groupsState
	sourcesState
	retrievalsState
)

package tui

import "github.com/soumilsri/LinkedInAutoPoster/internal/publish"

type publishDoneMsg struct {
	draftID int
	result  publish.Result
}

type refineDoneMsg struct {
	draftID int
	content string
	err     error
}

type browseErrMsg struct {
	err error
}

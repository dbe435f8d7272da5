package publish

// Locator is one named strategy for finding a UI element. LinkedIn's markup
// is not stable, so every element the workflow touches carries an ordered
// fallback list tried in sequence.
type Locator struct {
	Name  string
	Query string // CSS selector
}

const (
	loginURL = "https://www.linkedin.com/login"
	feedURL  = "https://www.linkedin.com/feed/"
)

var (
	usernameLocator = Locator{Name: "login-username", Query: `#username`}
	passwordLocator = Locator{Name: "login-password", Query: `#password`}
	signInLocator   = Locator{Name: "login-submit", Query: `button[type="submit"]`}

	// "Start a post" trigger that opens the compose surface.
	startPostLocators = []Locator{
		{Name: "share-trigger", Query: `button.share-box-feed-entry__trigger`},
		{Name: "share-trigger-aria", Query: `button[aria-label^="Start a post"]`},
	}

	// The contenteditable editor inside the compose surface.
	editorLocators = []Locator{
		{Name: "editor-ql", Query: `div.ql-editor[contenteditable="true"]`},
		{Name: "editor-textbox", Query: `div[role="textbox"][contenteditable="true"]`},
		{Name: "editor-aria", Query: `div[aria-label="Text editor for creating content"]`},
	}

	submitLocators = []Locator{
		{Name: "post-primary", Query: `button.share-actions__primary-action`},
		{Name: "post-aria", Query: `button[aria-label="Post"]`},
		{Name: "post-modal-action", Query: `div.share-box_actions button.artdeco-button--primary`},
	}

	// Recently rendered feed cards, scanned during verification.
	feedPostLocator = Locator{Name: "feed-posts", Query: `div.feed-shared-update-v2`}
)

// Paths whose appearance in the address bar signals an authenticated session.
var authenticatedPaths = []string{"/feed", "linkedin.com/in/"}

package outlook

// Well-known folder names Microsoft Graph accepts in place of a folder id.
const (
	// FolderInbox addresses the Inbox.
	FolderInbox = "inbox"
	// FolderSentItems addresses sent mail.
	FolderSentItems = "sentitems"
	// FolderDrafts addresses draft messages.
	FolderDrafts = "drafts"
	// FolderDeletedItems addresses the bin.
	FolderDeletedItems = "deleteditems"
	// FolderJunk addresses detected spam.
	FolderJunk = "junkemail"
	// FolderArchive addresses archived mail.
	FolderArchive = "archive"
)

// MailFolder represents an Outlook mail folder from Microsoft Graph API.
type MailFolder struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ParentFolderID   string `json:"parentFolderId"`
	ChildFolderCount int    `json:"childFolderCount"`
	UnreadItemCount  int    `json:"unreadItemCount"`
	TotalItemCount   int    `json:"totalItemCount"`
}

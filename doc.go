// Package mdwiki is the composition root of the mdwiki client.
//
// It wires the wiki components (workspace tree, document editor,
// attachments, access gate and session) over a synchronization client that
// speaks the backend's HTTP contract, and shares their state through a single
// store.
//
// Usage:
//
//	wb, err := mdwiki.New("https://wiki.example.com/api",
//		mdwiki.WithToken(token),
//		mdwiki.WithLogger(logger),
//	)
//
//	spaces, err := wb.Tree.ListWorkspaces(ctx)
//	ed, err := wb.OpenPage(ctx, spaces[0].ID, pageID)
package mdwiki

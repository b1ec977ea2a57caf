package core

import (
	"fmt"
	"net/url"
)

// Backend path templates.

func SpacesPath() string { return "/spaces" }

func SpacePath(ws int) string { return fmt.Sprintf("/spaces/%d", ws) }

func PagesPath(ws int) string { return fmt.Sprintf("/spaces/%d/pages", ws) }

func PagePath(ws, pg int) string { return fmt.Sprintf("/spaces/%d/pages/%d", ws, pg) }

func DocumentPath(ws, pg int) string { return fmt.Sprintf("/spaces/%d/pages/%d/document", ws, pg) }

func ExportPath(ws, pg int) string { return fmt.Sprintf("/spaces/%d/pages/%d/document/pdf", ws, pg) }

func UploadPath(ws int) string { return fmt.Sprintf("/spaces/%d/upload/image", ws) }

func UploadsPath() string { return "/user/uploads" }

func DownloadPath(guid string) string { return "/download/image/" + url.PathEscape(guid) }

func ThumbnailPath(guid string) string { return "/download/thumbnail/" + url.PathEscape(guid) }

func DeleteImagePath(guid string) string { return "/delete/image/" + url.PathEscape(guid) }

const (
	LoginPath  = "/auth/login"
	WhoAmIPath = "/auth/whoami"
	LogoutPath = "/auth/logout"
)

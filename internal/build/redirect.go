package build

import (
	"html"

	"git.home.luguber.info/inful/snowbow/internal/config"
)

// RedirectHTML is the page served at the base path. It sends visitors to the
// default language.
func RedirectHTML(theme *config.Theme) string {
	target := html.EscapeString(theme.BasePath + theme.DefaultLanguage() + "/")
	return "<!DOCTYPE html>\n" +
		"<html>\n" +
		"\t<head>\n" +
		"\t\t<meta charset=\"utf-8\" />\n" +
		"\t\t<meta http-equiv=\"refresh\" content=\"0; url=" + target + "\" />\n" +
		"\t</head>\n" +
		"\t<body>\n" +
		"\t</body>\n" +
		"</html>\n"
}

package ui

import (
	"strings"

	"github.com/arthur-debert/stackops/pkg/ui/styles"
)

var welcomeItems = []string{
	"Initial server configuration",
	"Nginx with SSL",
	"Docker installation",
	"GitHub Actions Runner (optional)",
}

// Welcome returns the banner shown before the interactive setup
func Welcome(version string, styled bool) string {
	title := "StackOps " + version

	var body strings.Builder
	body.WriteString("This tool will help you set up:\n")
	for _, item := range welcomeItems {
		body.WriteString("• " + item + "\n")
	}
	text := strings.TrimRight(body.String(), "\n")

	if !styled {
		rule := strings.Repeat("=", 50)
		return rule + "\n" + title + "\n" + rule + "\n" + text + "\n"
	}

	content := styles.GetStyle("BannerTitle").Render(title) + "\n\n" +
		styles.GetStyle("BannerText").Render(text)
	return styles.GetStyle("BannerBox").Render(content) + "\n"
}

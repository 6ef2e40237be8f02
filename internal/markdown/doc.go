// Package markdown loads posts from the flat content directory, splits their
// YAML front matter from the body and renders the body to HTML with goldmark.
package markdown

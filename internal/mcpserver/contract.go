package mcpserver

// BookmarkFormat describes the bookmark file format that LLM consumers
// should follow when saving links.
const BookmarkFormat = `# Depot Bookmark Format

Every bookmark is one Markdown file in the bookmarks directory of the
content root. It is published on the bookmarks page, newest first.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED
date: 2013-05-01 10:30              # REQUIRED – site time zone unless an offset is given
url: https://example.com/article    # REQUIRED – absolute http(s) URL
tags:                               # OPTIONAL – YAML list
  - go
---

Optional note in Markdown. It is shown under the link.
` + "```" + `

## Rules

1. **date, title and url are mandatory.** A file missing one of them is skipped
   with a warning (or fails the build when bookmarks.strict is set).
2. **File names** are ` + "`" + `yyyy-mm-dd-slug.md` + "`" + `, lowercase ASCII.
3. **The domain** shown next to the link is taken from the URL host; do not
   store it.
4. Prefer the ` + "`" + `save_bookmark` + "`" + ` tool over writing files by hand: it fetches the
   page title and picks the file name.
`

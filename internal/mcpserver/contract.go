package mcpserver

// NoteFormat describes the note record returned and accepted by the tools.
const NoteFormat = `# InkFlow Note Format

Tools exchange notes as JSON objects:

` + "```" + `json
{
  "id": "agent-5f0c...",
  "title": "Weekly standup",
  "content": "# Weekly standup\n\nAction items...",
  "notebookId": "2",
  "tags": ["meeting-notes"],
  "status": "active",
  "pinned": false,
  "createdAt": 1737331200000,
  "updatedAt": 1737334800000
}
` + "```" + `

## Rules

1. **status** is one of ` + "`none`, `active`, `onHold`, `completed`, `dropped`" + `.
   Notes created through these tools start as ` + "`active`" + ` unless told otherwise.
2. **notebookId** must name an existing notebook (see ` + "`list_notebooks`" + `).
   Omit it to use the default notebook ` + "`1`" + `.
3. **title** falls back to ` + "`Untitled`" + ` when blank. Passing an empty title to
   ` + "`update_note`" + ` leaves the current title in place.
4. **content** is free Markdown. Inline ` + "`#tags`" + ` are not extracted automatically.
5. **createdAt / updatedAt** are milliseconds since the Unix epoch. Every edit of
   title, content or status moves updatedAt forward.
6. Ids of notes created by tools start with ` + "`agent-`" + `.

## Sync

The ` + "`git_*`" + ` and ` + "`export_markdown`" + ` tools work only when InkFlow runs
with the file backend and a configured repository. Otherwise they fail with
"host unsupported".
`

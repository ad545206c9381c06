package mcpserver

// ContentFormat describes the content file that feeds the notes, events and
// socials apps, for LLM consumers that help edit it.
const ContentFormat = `# folio content format

The content file is YAML with three top-level lists.

` + "```" + `yaml
notes:
  - id: 1                 # REQUIRED, positive, unique among notes
    title: hello world    # REQUIRED
    date: 03/01/25        # DD/MM/YY
    pinned: true          # pinned notes are listed first
    locked: false         # locked notes never expose their content
    content: |
      Body text. Link to other items with [[notes:3|a label]]
      or [[events:2]].
events:
  - id: 1                 # REQUIRED, positive, unique among events
    title: Go meetup      # REQUIRED
    date: 21/11/26        # REQUIRED, DD/MM/YY
    attendees: 42
    clickable: true
    timeframe: upcoming   # REQUIRED, upcoming | past
socials:
  - id: 1
    name: GitHub
    handle: starford
    url: https://github.com/starford
` + "```" + `

## Rules

1. **Ids** are positive integers, unique per list. They appear in URLs and
   in visitors' viewed ledgers, so do not renumber existing items.
2. **Links** use ` + "`" + `[[kind:id|label]]` + "`" + ` where kind is ` + "`" + `notes` + "`" + ` or ` + "`" + `events` + "`" + `.
   Without a label the target itself is shown. Malformed links stay verbatim.
3. **The first pinned note** (or the first note) and **the soonest upcoming
   event** are highlighted for first-time visitors.
4. **Upcoming events** are sorted soonest first, past events most recent first.
`

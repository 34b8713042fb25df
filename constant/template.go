// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// Lua Provider Identifiers - these constants define the globals a custom provider script must declare.
const (
	ProviderTable = "Provider"
	RecordsFn     = "Records"
)

// ProviderTemplate is a Go text/template for scaffolding new Lua provider files.
const ProviderTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias content { kind: "movie"|"series", id: number, season: number|nil, episode: number|nil }
---@alias record { id: string|nil, name: string, locator: string|nil, kind: string|nil, quality: string|nil, language: string|nil, subtitles: string[]|nil }


----- PROVIDER -----

{{ .ProviderTable }} = {
	id = "{{ .ID }}",
	name = "{{ .Name }}",
	-- stream, download or torrent
	variant = "stream",
	group = "{{ .Name }}",
	movie = "{{ .URL }}/movie/{{"{{"}} .ID {{"}}"}}",
	series = "{{ .URL }}/tv/{{"{{"}} .ID {{"}}"}}/{{"{{"}} .Season {{"}}"}}/{{"{{"}} .Episode {{"}}"}}",
	params = {},
}

--- END PROVIDER ---



----- MAIN -----

--- Lists the records this provider contributes for a content item.
-- @param content content The content being aggregated
-- @param locator string The locator built from the templates above
-- @return record[] Table of records
function {{ .RecordsFn }}(content, locator)
	return {
		{ name = "{{ .Name }}", quality = "HD" },
	}
end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies an entry in the issue catalog.
type Id int

const (
	UnknownSetupId Id = iota + 1
	SetupCycleId
	PackageManagerMissingId
	LockHeldId
	ConfigLoadFailedId
	ToolchainManagerMissingId
	MPDUnreachableId
	CommandNotFoundId
)

const repoLink HttpLink = "https://github.com/fenhl/syncbin"

type (
	MarkdownMsg string

	HttpLink string

	// Renderer turns Markdown into terminal output.
	Renderer interface {
		Render(in string, stylePath string) (string, error)
	}

	// Issue is a catalog entry with Markdown remediation help.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with glamour using stylePath ("dark", "light",
// "notty", or a JSON style file). Links are appended as a "See also" list.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	unknownSetupIssue = &Issue{
		id: UnknownSetupId,
		mdMsg: `
# No such setup

The setup name you passed to ` + "`syncbin bootstrap`" + ` is not registered.
Nothing was installed.

## Things you can try
- List the available setups and their state:
~~~
$ syncbin status
~~~
- Read what a setup does before running it:
~~~
$ syncbin describe gitdir
~~~`,
		docLinks: []HttpLink{repoLink},
	}

	setupCycleIssue = &Issue{
		id: SetupCycleId,
		mdMsg: `
# Setup prerequisites form a cycle

Two or more setups require each other, so no install order exists.
This is a bug in the setup table, not in your machine.`,
		docLinks: []HttpLink{repoLink + "/issues"},
	}

	packageManagerMissingIssue = &Issue{
		id: PackageManagerMissingId,
		mdMsg: `
# No package manager found

The setup needs OS packages, but neither ` + "`apt-get`" + ` nor ` + "`brew`" + ` is on your PATH.

## Things you can try
- On macOS, install Homebrew first.
- Or pin the package manager in ` + "`~/.config/fenhl/syncbin.json`" + `:
~~~json
{"bootstrap": {"package_manager": "brew"}}
~~~`,
		extLinks: []HttpLink{"https://brew.sh/"},
	}

	lockHeldIssue = &Issue{
		id: LockHeldId,
		mdMsg: `
# Another update is running

A Rust update holds the lock directory, so this one is waiting.

## Things you can try
- Wait for the other ` + "`rust`" + ` process to finish.
- If no other update is running (for example after a crash), release the lock:
~~~
$ rust --ignore-lock
~~~
- From scripts, skip instead of waiting:
~~~
$ rust --skip-if-locked
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

` + "`fenhl/syncbin.json`" + ` exists but could not be read or does not match the expected schema.

## Things you can try
- Show where syncbin looks for its config:
~~~
$ syncbin config path
~~~
- Check the JSON syntax, and that ` + "`rust.projects`" + ` and ` + "`diskspace.volumes`" + ` are lists of strings.
- Move the file away to fall back to defaults.`,
		docLinks: []HttpLink{repoLink},
	}

	toolchainManagerMissingIssue = &Issue{
		id: ToolchainManagerMissingId,
		mdMsg: `
# rustup not found

` + "`rustup`" + ` is neither on your PATH nor in ` + "`~/.cargo/bin`" + `.

## Things you can try
- Install Rust through syncbin:
~~~
$ syncbin bootstrap rust
~~~`,
		extLinks: []HttpLink{"https://rustup.rs/"},
	}

	mpdUnreachableIssue = &Issue{
		id: MPDUnreachableId,
		mdMsg: `
# Cannot reach MPD

The playlist tool could not connect to the music player daemon.

## Things you can try
- Make sure mpd is running.
- Point the tool at the right server with ` + "`MPD_HOST`" + ` and ` + "`MPD_PORT`" + ` (default localhost:6600).`,
		extLinks: []HttpLink{"https://www.musicpd.org/"},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

A program syncbin needs is not installed or not on your PATH.

## Things you can try
- Check your PATH:
~~~
$ echo $PATH
~~~
- Install the program with your package manager and retry.`,
	}

	issues = map[Id]*Issue{
		unknownSetupIssue.Id():            unknownSetupIssue,
		setupCycleIssue.Id():              setupCycleIssue,
		packageManagerMissingIssue.Id():   packageManagerMissingIssue,
		lockHeldIssue.Id():                lockHeldIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		toolchainManagerMissingIssue.Id(): toolchainManagerMissingIssue,
		mpdUnreachableIssue.Id():          mpdUnreachableIssue,
		commandNotFoundIssue.Id():         commandNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	all := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		all = append(all, i)
	}
	slices.SortFunc(all, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return all
}

func Get(id Id) *Issue {
	return issues[id]
}

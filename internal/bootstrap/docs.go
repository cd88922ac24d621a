// SPDX-License-Identifier: MPL-2.0

package bootstrap

const debianRootDoc = `# debian-root

Installs **ntp** and **ruby-dev** with apt-get, then sets the setuid bit on
` + "`ping`" + ` so unprivileged users can run it.

Only meaningful on Debian-like systems; on other package managers the
package step is skipped.
`

const gitdirDoc = `# gitdir

Clones [gitdir](https://github.com/fenhl/gitdir) into
` + "`$GITDIR/github.com/fenhl/gitdir/master`" + ` and links its package into
` + "`/opt/py`" + `.

Requires the **python** setup for ` + "`/opt/py`" + `.
`

const noBatteryDoc = `# no-battery

Writes ` + "`~/bin/batcharge`" + `, a script that prints nothing and exits 0, so
prompt themes that show the battery level stay quiet on desktops.
`

const pythonDoc = `# python

Installs the pip modules *blessings*, *docopt* and *requests*, and creates
` + "`/opt/py`" + `.

Once **gitdir** is set up, a second run also clones
*python-xdg-basedir* and *lazyjson* and links them into ` + "`/opt/py`" + `.
`

const rustDoc = `# rust

Runs the rustup installer:

` + "```sh\ncurl https://sh.rustup.rs -sSf | sh -s -- --no-modify-path\n```" + `

The shell profile is left alone; syncbin adds ` + "`~/.cargo/bin`" + ` itself.
`

const sudoDoc = `# sudo

Opens ` + "`/etc/sudoers.d/<user>`" + ` in nano after printing the line that
grants the current user passwordless sudo.
`

const syncbinPrivateDoc = `# syncbin-private

Clones the private syncbin repository from ` + "`bootstrap.private_remote`" + `
in ` + "`syncbin.json`" + ` into ` + "`$GITDIR/fenhl.net/syncbin-private/master`" + `.

Requires the **gitdir** setup.
`

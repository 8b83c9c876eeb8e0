package gate

import (
	"fmt"
	"io"
)

// RuntimeVersionNotice writes the notice shown when the runtime is too old.
func (g *Gate) RuntimeVersionNotice(w io.Writer) error {
	return g.writeNotice(w, g.cfg.RuntimeName, g.cfg.MinRuntimeVersion,
		"Please contact your host and ask them to upgrade.")
}

// HostVersionNotice writes the notice shown when the host framework is too old.
func (g *Gate) HostVersionNotice(w io.Writer) error {
	return g.writeNotice(w, g.cfg.HostName, g.cfg.MinHostVersion,
		fmt.Sprintf("Please update %s.", g.host.EscapeHTML(g.cfg.HostName)))
}

// hint is written as-is and must already be escaped.
func (g *Gate) writeNotice(w io.Writer, subject, minVersion, hint string) error {
	esc := g.host.EscapeHTML
	_, err := fmt.Fprintf(w,
		"<div class=\"error\"><p>The &#8220;%s&#8221; plugin cannot run on %s versions older than %s. %s</p></div>\n",
		esc(g.cfg.Title), esc(subject), esc(minVersion), hint)
	return err
}

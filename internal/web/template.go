package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/lock-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Identity.Name}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.secured, .closed { color: green; font-weight: bold; }
.unsecured, .open { color: #c60; font-weight: bold; }
.unknown, .jammed, .invalid { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>{{.Identity.Name}}</h1>

<h2>Lock</h2>
<table>
<tr><th>Current</th><td id="lock-current" class="{{lower .Current.String}}">{{.Current}}</td></tr>
<tr><th>Target</th><td id="lock-target" class="{{lower .Target.String}}">{{.Target}}</td></tr>
<tr><th>Contact</th><td id="contact" class="{{lower .Contact}}">{{.Contact}}</td></tr>
{{if .ResetInProgress}}<tr><th>Factory reset</th><td class="unknown">in progress</td></tr>{{end}}
{{if .IdentifyInProgress}}<tr><th>Identify</th><td>in progress</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic prefix</th><td>{{.Config.TopicPrefix}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Notifications</h2>
<table>
<tr><th>Secured</th><td>{{.Counts.Secured}}</td></tr>
<tr><th>Unsecured</th><td>{{.Counts.Unsecured}}</td></tr>
<tr><th>Contact open</th><td>{{.Counts.ContactOpen}}</td></tr>
<tr><th>Contact closed</th><td>{{.Counts.ContactClosed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Serial</th><td>{{.Identity.SerialNumber}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Repeat window</th><td>{{.Config.RepeatWindowMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/accessories.json">Accessories</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template needs the derived values as fields.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Contact string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Contact:  status.ContactString(snap),
	}
	indexTmpl.Execute(w, data)
}

package server

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Page wraps body in a full HTML document with the client script that keeps
// the grid in sync over /ws.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">" +
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">" +
			"<title>" + html.EscapeString(title) + "</title><style>" + pageStyle + "</style></head>" +
			"<body><main id=\"grid-root\">"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main><script>"+clientScript+"</script></body></html>")
		return err
	})
}

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 2rem; }
.grid-table { border-collapse: collapse; width: 100%; }
.grid-table th, .grid-table td { border-bottom: 1px solid #ddd; padding: .4rem .6rem; text-align: left; }
.grid-table tr.selected td { background: #eef4ff; }
.grid-pagination { display: flex; gap: .5rem; align-items: center; margin: 1rem 0; }
.grid-page-links { display: flex; gap: .25rem; list-style: none; margin: 0; padding: 0; }
.grid-page-link.active { font-weight: bold; text-decoration: none; }
.grid-compact .grid-table td { padding: .2rem .3rem; }
`

const clientScript = `
(function () {
  var root = document.getElementById("grid-root");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  function send(cmd) { if (ws.readyState === 1) ws.send(JSON.stringify(cmd)); }
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "grid") root.innerHTML = msg.content;
    if (msg.type === "error") console.warn("templgrid:", msg.content);
  };
  root.addEventListener("click", function (ev) {
    var link = ev.target.closest("[data-page]");
    if (link) { ev.preventDefault(); send({type: "page", page: parseInt(link.dataset.page, 10)}); return; }
    var arrow = ev.target.closest("[data-page-action]");
    if (arrow) {
      var current = root.querySelector(".grid-page-link.active");
      var page = current ? parseInt(current.dataset.page, 10) : 1;
      send({type: "page", page: arrow.dataset.pageAction === "next" ? page + 1 : page - 1});
      return;
    }
    var row = ev.target.closest("tr[data-row]");
    if (row && row.closest("[data-selectable]")) send({type: "select", row: row.dataset.row});
  });
})();
`

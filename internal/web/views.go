package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/inbound/internal/core"
)

// DashboardData is what the dashboard page renders.
type DashboardData struct {
	Stats       core.Stats
	LastScanned string
	History     []core.ScanEvent
	Phase       core.ResetPhase
	HighlightMS int64
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		Stats:       s.service.Stats(),
		LastScanned: s.service.LastScanned(),
		History:     s.service.History(core.HistoryFilter{}),
		Phase:       s.service.ResetPhase(),
		HighlightMS: s.cfg.Scanner.HighlightDelay.Milliseconds(),
	}
	templ.Handler(Dashboard(data)).ServeHTTP(w, r)
}

// Dashboard renders the receiving station page: the four progress figures,
// upload and scan forms, and the scan history with the last scanned SKU
// highlighted.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.print(`<!DOCTYPE html><html lang="ko"><head><meta charset="utf-8">`)
		ew.print(`<title>입고 스캔</title><style>`)
		ew.print(`body{font-family:sans-serif;margin:2rem}.stats{display:flex;gap:2rem}`)
		ew.print(`.stat b{display:block;font-size:1.6rem}tr.highlight{background:#fff3b0}`)
		ew.print(`table{border-collapse:collapse;margin-top:1rem}td,th{border:1px solid #ccc;padding:.3rem .6rem}`)
		ew.print(`</style></head><body>`)

		ew.print(`<h1>입고 스캔</h1><section class="stats">`)
		ew.stat("총 SKU 수", strconv.Itoa(d.Stats.TotalSkus))
		ew.stat("예정 수량", strconv.FormatFloat(d.Stats.ExpectedTotal, 'f', -1, 64))
		ew.stat("스캔 수량", strconv.Itoa(d.Stats.ActualTotal))
		ew.stat("진행률", core.FormatPercent(d.Stats.OverallProgress))
		ew.print(`</section>`)

		ew.print(`<form id="upload" enctype="multipart/form-data">`)
		ew.print(`<input type="file" name="file" accept=".xlsx,.csv"><button>업로드</button></form>`)
		ew.print(`<form id="scan"><input name="barcode" autofocus autocomplete="off" placeholder="STYLE/COLOR/SIZE"></form>`)
		ew.print(`<div id="notice" role="status"></div>`)

		ew.print(`<button id="export">엑셀 내보내기</button> `)
		ew.printf(`<button id="reset" data-phase="%s">초기화</button>`, templ.EscapeString(string(d.Phase)))

		ew.print(`<table><thead><tr><th>바코드</th><th>SKU</th><th>예정수량</th><th>스캔수량</th><th>시간</th></tr></thead><tbody>`)
		for _, ev := range d.History {
			class := ""
			if ev.SKU == d.LastScanned {
				class = ` class="highlight"`
			}
			ew.printf(`<tr%s><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
				class,
				templ.EscapeString(ev.Barcode),
				templ.EscapeString(ev.SKU),
				strconv.FormatFloat(ev.ExpectedQuantity, 'f', -1, 64),
				ev.ActualQuantity,
				templ.EscapeString(ev.Timestamp),
			)
		}
		ew.print(`</tbody></table>`)

		ew.printf(`<script>const HIGHLIGHT_MS=%d;`, d.HighlightMS)
		ew.print(dashboardScript)
		ew.print(`</script></body></html>`)
		return ew.err
	})
}

// dashboardScript drives the forms through the JSON API and reloads the
// page once the highlight delay has passed.
const dashboardScript = `
const notice=document.getElementById("notice");
function show(ns){notice.textContent=(ns||[]).map(n=>n.message).join(" ");}
async function post(url,body){const r=await fetch(url,{method:"POST",body:body});return [r,r.headers.get("Content-Type")||""];}
document.getElementById("scan").addEventListener("submit",async e=>{
  e.preventDefault();const f=e.target;const fd=new FormData(f);f.reset();
  const [r]=await post("/api/scan",fd);const j=await r.json();show(j.notifications);
  setTimeout(()=>location.reload(),HIGHLIGHT_MS);
});
document.getElementById("upload").addEventListener("submit",async e=>{
  e.preventDefault();const [r]=await post("/api/upload",new FormData(e.target));const j=await r.json();
  show(j.notification?[j.notification]:[j]);if(r.ok)location.reload();
});
document.getElementById("export").addEventListener("click",async()=>{
  const [r,ct]=await post("/api/export");
  if(!ct.includes("spreadsheetml")){show([await r.json()]);return;}
  const cd=r.headers.get("Content-Disposition")||"";const m=cd.match(/filename\*=UTF-8''(.+)$/);
  const a=document.createElement("a");a.href=URL.createObjectURL(await r.blob());
  a.download=m?decodeURIComponent(m[1]):"export.xlsx";a.click();location.reload();
});
document.getElementById("reset").addEventListener("click",async()=>{
  await post("/api/reset/cancel");await post("/api/reset/request");
  if(!confirm("정말로 데이터를 초기화하시겠습니까? 이 작업은 되돌릴 수 없습니다.")){await post("/api/reset/cancel");return;}
  await post("/api/reset/confirm");
  if(!confirm("마지막으로 확인합니다. 데이터를 초기화하시겠습니까?")){await post("/api/reset/cancel");return;}
  const [r]=await post("/api/reset/finalize");const j=await r.json();
  show(j.notification?[j.notification]:[j]);location.reload();
});
`

// errWriter remembers the first write error so rendering reads linearly.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) stat(label, value string) {
	e.printf(`<div class="stat">%s<b>%s</b></div>`, templ.EscapeString(label), templ.EscapeString(value))
}

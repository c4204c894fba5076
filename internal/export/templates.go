package export

// mindmapTemplate is the html/template for an exported mind map.
const mindmapTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>{{.Style}}</style>
</head>
<body>
  <header class="toolbar">
    <h1>{{.Title}}</h1>
    <button type="button" data-action="zoom-in" aria-label="Zoom in">+</button>
    <button type="button" data-action="zoom-out" aria-label="Zoom out">-</button>
    <button type="button" data-action="center">Center</button>
    <button type="button" data-action="expand-all">Expand all</button>
    <button type="button" data-action="collapse-all">Collapse all</button>
  </header>
  <main id="stage" class="stage">
    <div id="canvas" class="canvas {{.Orientation}}" style="{{.Transform}}">
      <ul class="tree">{{template "node" .Root}}</ul>
    </div>
  </main>
  <script type="application/json" id="docmap-state">{{.State}}</script>
  <script>{{.Script}}</script>
</body>
</html>
{{define "node"}}<li data-id="{{.ID}}" class="{{if .Toggleable}}toggleable{{end}}{{if .Open}} open{{end}}"><span class="label">{{if .Toggleable}}<i class="ind"></i>{{end}}{{.Label}}</span>{{with .Note}}<small class="note">{{.}}</small>{{end}}{{if .Children}}<ul>{{range .Children}}{{template "node" .}}{{end}}</ul>{{end}}</li>{{end}}`

// mindmapCSS is inlined into exported pages.
const mindmapCSS = `
* { box-sizing: border-box; }
html, body { margin: 0; height: 100%; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; color: #1f2937; background: #f8fafc; }
.toolbar { position: fixed; top: 0; left: 0; right: 0; z-index: 2; display: flex; gap: .5rem; align-items: center; padding: .5rem 1rem; background: #fff; border-bottom: 1px solid #e5e7eb; }
.toolbar h1 { flex: 1; margin: 0; font-size: 1rem; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
.toolbar button { border: 1px solid #d1d5db; background: #fff; border-radius: 6px; padding: .25rem .6rem; cursor: pointer; }
.stage { position: fixed; inset: 3rem 0 0 0; overflow: hidden; touch-action: none; cursor: grab; }
.canvas { position: absolute; top: 2rem; left: 2rem; transform-origin: 0 0; }
.tree, .tree ul { list-style: none; margin: 0; padding: 0; }
.tree ul { padding-left: 1.5rem; border-left: 1px dashed #cbd5e1; margin-left: .5rem; }
.tree li { margin: .35rem 0; }
.tree li:not(.open) > ul { display: none; }
.label { display: inline-block; padding: .3rem .7rem; border-radius: 8px; background: #fff; border: 1px solid #cbd5e1; user-select: none; }
.toggleable > .label { cursor: pointer; border-color: #6366f1; }
.ind { font-style: normal; margin-right: .35rem; color: #6366f1; }
.ind::before { content: "\25B8"; }
.open > .label > .ind::before { content: "\25BE"; }
.note { display: block; margin: .2rem 0 0 .7rem; color: #6b7280; max-width: 32rem; }
.canvas.top-down .tree ul { display: flex; gap: 1rem; padding: 1rem 0 0 0; margin: 0; border-left: 0; border-top: 1px dashed #cbd5e1; }
.canvas.top-down .tree li:not(.open) > ul { display: none; }
.canvas.top-down .tree li { display: flex; flex-direction: column; align-items: center; }
.canvas.top-down .ind::before { content: "\25BE"; }
.canvas.top-down .open > .label > .ind::before { content: "\25B4"; }
`

// mindmapJS mirrors treeview.View and treeview.Gestures over the embedded
// state so an exported page stays interactive offline.
const mindmapJS = `
(function () {
  "use strict";
  var MIN_SCALE = 0.43, MAX_SCALE = 2.0, MAX_OFFSET = 1e6, PAN_THRESHOLD = 3;

  var data = JSON.parse(document.getElementById("docmap-state").textContent);
  var cam = {
    x: offset(data.state.camera.x || 0),
    y: offset(data.state.camera.y || 0),
    scale: data.state.camera.scale || 1
  };
  var stage = document.getElementById("stage");
  var canvas = document.getElementById("canvas");

  function clamp(s) { return Math.min(MAX_SCALE, Math.max(MIN_SCALE, s)); }
  function render() {
    canvas.style.transform = "translate(" + cam.x + "px, " + cam.y + "px) scale(" + cam.scale + ")";
  }
  function nodeById(id) {
    var items = canvas.querySelectorAll("li[data-id]");
    for (var i = 0; i < items.length; i++) {
      if (items[i].getAttribute("data-id") === id) { return items[i]; }
    }
    return null;
  }
  function toggle(id) {
    var li = nodeById(id);
    if (li && li.classList.contains("toggleable")) { li.classList.toggle("open"); }
  }
  function setAll(open) {
    var items = canvas.querySelectorAll("li.toggleable");
    for (var i = 0; i < items.length; i++) { items[i].classList.toggle("open", open); }
  }
  function zoom(factor) { cam.scale = clamp(cam.scale * factor); render(); }
  function offset(v) { return Math.min(MAX_OFFSET, Math.max(-MAX_OFFSET, v)); }
  function pan(dx, dy) { cam.x = offset(cam.x + dx); cam.y = offset(cam.y + dy); render(); }
  function center() { cam.x = 0; cam.y = 0; cam.scale = 1; render(); }

  var pointers = new Map();
  var panning = false;
  var pinch = null;

  function distance(a, b) { return Math.hypot(a.x - b.x, a.y - b.y); }

  function armPinch() {
    var ids = Array.from(pointers.keys()).sort(function (x, y) { return x - y; });
    var a = pointers.get(ids[0]), b = pointers.get(ids[1]);
    a.pinched = true;
    b.pinched = true;
    panning = false;
    pinch = { a: ids[0], b: ids[1], startDist: distance(a, b), startScale: cam.scale };
  }

  stage.addEventListener("pointerdown", function (e) {
    var label = e.target.closest ? e.target.closest(".label") : null;
    var target = label && label.parentNode ? label.parentNode.getAttribute("data-id") || "" : "";
    if (stage.setPointerCapture) { stage.setPointerCapture(e.pointerId); }
    pointers.set(e.pointerId, { sx: e.clientX, sy: e.clientY, x: e.clientX, y: e.clientY, target: target, pinched: false });

    if (pinch === null && pointers.size >= 2) { armPinch(); }
  });

  stage.addEventListener("pointermove", function (e) {
    var p = pointers.get(e.pointerId);
    if (!p) { return; }
    var dx = e.clientX - p.x, dy = e.clientY - p.y;
    p.x = e.clientX;
    p.y = e.clientY;

    if (pinch !== null) {
      if (pinch.startDist > 0) {
        var d = distance(pointers.get(pinch.a), pointers.get(pinch.b));
        cam.scale = clamp(pinch.startScale * d / pinch.startDist);
        render();
      }
      return;
    }
    if (pointers.size !== 1) { return; }
    if (!panning && Math.hypot(p.x - p.sx, p.y - p.sy) > PAN_THRESHOLD) { panning = true; }
    if (panning) { pan(dx, dy); }
  });

  function release(id) {
    pointers.delete(id);
    if (pinch !== null && (id === pinch.a || id === pinch.b)) {
      pinch = null;
      if (pointers.size >= 2) {
        armPinch();
      } else {
        pointers.forEach(function (p) { p.sx = p.x; p.sy = p.y; });
      }
    }
    if (pointers.size === 0) { panning = false; }
  }

  stage.addEventListener("pointerup", function (e) {
    var p = pointers.get(e.pointerId);
    if (!p) { return; }
    var tap = !p.pinched && !panning && pointers.size === 1;
    release(e.pointerId);
    if (tap && p.target) { toggle(p.target); }
  });

  stage.addEventListener("pointercancel", function (e) {
    if (pointers.has(e.pointerId)) { release(e.pointerId); }
  });

  stage.addEventListener("wheel", function (e) {
    e.preventDefault();
    if (e.deltaY > 0) { zoom(0.9); } else if (e.deltaY < 0) { zoom(1.1); }
  }, { passive: false });

  var actions = {
    "zoom-in": function () { zoom(1.1); },
    "zoom-out": function () { zoom(0.9); },
    "center": center,
    "expand-all": function () { setAll(true); },
    "collapse-all": function () { setAll(false); }
  };
  document.querySelectorAll("[data-action]").forEach(function (btn) {
    btn.addEventListener("click", function () { actions[btn.getAttribute("data-action")](); });
  });

  render();
})();
`

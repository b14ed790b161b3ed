/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

package ebmutil

// homePage is a minimal client for the websocket interface. Keys act on
// the cell under the mouse: u/d raise and lower, h injects heat, c clears
// heat, r resets temperature, 1/2 switch the display and p pauses. Left
// and right clicks raise and lower.
const homePage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>EBM</title>
<style>body{background:#222;color:#ddd;font-family:sans-serif} canvas{image-rendering:pixelated}</style>
</head>
<body>
<canvas id="map" width="600" height="300"></canvas>
<div id="status"></div>
<script>
"use strict";
var canvas = document.getElementById("map");
var ctx = canvas.getContext("2d");
var status = document.getElementById("status");
var snap = null, cell = null;
var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");

function send(msg) { ws.send(JSON.stringify(msg)); }

function color(i) {
	var t = snap.temperature[i], a = snap.altitude[i];
	if (snap.display === "altitude") {
		if (a <= 0) { return t > 280 ? "rgb(135,206,235)" : "rgb(245,245,245)"; }
		var f = 1 - Math.min(Math.max(a / 10, 0), 1);
		return "rgb(" + Math.floor(139 * f) + "," + Math.floor(69 * f) + "," + Math.floor(19 * f) + ")";
	}
	var v = Math.min(Math.max(t / 1000, 0), 1);
	return "rgb(" + Math.floor(255 * Math.min(3 * v, 1)) + "," +
		Math.floor(255 * Math.min(Math.max(3 * v - 1, 0), 1)) + "," +
		Math.floor(255 * Math.max(3 * v - 2, 0)) + ")";
}

function draw() {
	var w = canvas.width / snap.cols, h = canvas.height / snap.rows;
	for (var i = 0; i < snap.rows; i++) {
		for (var j = 0; j < snap.cols; j++) {
			ctx.fillStyle = color(i * snap.cols + j);
			ctx.fillRect(j * w, i * h, Math.ceil(w), Math.ceil(h));
		}
	}
	status.textContent = "iteration " + snap.iteration + ", mean temperature " +
		snap.meanTemperature.toFixed(2) + (snap.running ? "" : " (paused)");
}

ws.onmessage = function(e) { snap = JSON.parse(e.data); draw(); };

canvas.onmousemove = function(e) {
	if (!snap) { return; }
	var r = canvas.getBoundingClientRect();
	cell = {
		row: Math.floor((e.clientY - r.top) / r.height * snap.rows),
		col: Math.floor((e.clientX - r.left) / r.width * snap.cols)
	};
};
canvas.oncontextmenu = function(e) { e.preventDefault(); };
canvas.onmousedown = function(e) {
	if (!cell) { return; }
	send({op: e.button === 2 ? "lower" : "raise", row: cell.row, col: cell.col});
};

document.onkeydown = function(e) {
	var at = function(op) { if (cell) { send({op: op, row: cell.row, col: cell.col}); } };
	switch (e.key) {
	case "u": at("raise"); break;
	case "d": at("lower"); break;
	case "h": at("heat"); break;
	case "c": at("clear"); break;
	case "r": send({op: "reset"}); break;
	case "p": send({op: "pause"}); break;
	case "1": send({op: "display", display: "altitude"}); break;
	case "2": send({op: "display", display: "temperature"}); break;
	}
};
</script>
</body>
</html>
`

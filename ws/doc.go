// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ws pushes live overlay updates over WebSocket.

Clients connect to GET /ws, optionally with ?poll=<id>, and receive JSON
text frames:

	{"type":"overlay","poll_id":"1","payload":{...models.Overlay...}}
	{"type":"event","poll_id":"1","payload":{...models.Event...}}

An overlay frame for every followed poll is sent on connect and again each
time the refresh loop sees new data. Event frames carry the notifications
published by the vote processor. Clients that fall behind lose frames
rather than slowing the hub.
*/
package ws

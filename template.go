package main

import (
	"html/template"
)

type templateArgs struct {
	Path string
	Room uint64
	User string
}

var webTemplate = template.Must(template.New("webTemplate").Parse(`
<html>
<head>
<title>room {{.Room}} as {{.User}}</title>
<script type="text/javascript">
window.addEventListener("load", function() {
    var conn;
    var msg = document.getElementById("msg");
    var log = document.getElementById("log");

    function appendLog(item) {
        var doScroll = log.scrollTop == log.scrollHeight - log.clientHeight;
        log.appendChild(item);
        if (doScroll) {
            log.scrollTop = log.scrollHeight - log.clientHeight;
        }
    }

    function line(text, bold) {
        var d = document.createElement("div");
        if (bold) {
            var b = document.createElement("b");
            b.textContent = text;
            d.appendChild(b);
        } else {
            d.textContent = text;
        }
        return d;
    }

    document.getElementById("form").onsubmit = function() {
        if (!conn || !msg.value) {
            return false;
        }
        conn.send(JSON.stringify({message: msg.value}));
        msg.value = "";
        return false;
    };

    if (!window["WebSocket"]) {
        appendLog(line("Your browser does not support WebSockets.", true));
        return;
    }
    var scheme = location.protocol === "https:" ? "wss://" : "ws://";
    conn = new WebSocket(scheme + location.host + "{{.Path}}");
    conn.onclose = function() {
        appendLog(line("Connection closed.", true));
    };
    conn.onmessage = function(evt) {
        var m = JSON.parse(evt.data);
        appendLog(line(m.user + ": " + m.message, false));
    };
    msg.focus();
});
</script>
<style type="text/css">
html {
    overflow: hidden;
}

body {
    overflow: hidden;
    padding: 0.5em;
    margin: 0;
    width: 100%;
    height: 100%;
    background: gray;
}

#log {
    background: white;
    margin: 0;
    padding: 0.5em 0.5em 0.5em 0.5em;
    position: absolute;
    top: 2.0em;
    left: 0.5em;
    right: 0.5em;
    bottom: 3em;
    overflow: auto;
}

#form {
    padding: 0 0.5em 0 0.5em;
    margin: 0;
    position: absolute;
    bottom: 0.5em;
    left: 0px;
    width: 100%;
    overflow: hidden;
}

</style>
</head>
<body>
<h3>Room {{.Room}} as {{.User}}</h3>
<div id="log"></div>
<form id="form">
    <input type="submit" value="Send" />
    <input type="text" id="msg" size="64" maxlength="128"/>
</form>
</body>
</html>
`))

package http

import "net/http"

// handleIndex serves a minimal chat page over the streaming ask API.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>docqa</title>
    <style>
        body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
        #messages { min-height: 300px; border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
        .message { margin: .5rem 0; padding: .5rem .75rem; border-radius: 6px; }
        .user { background: #eef; }
        .assistant { background: #f5f5f5; }
        form { display: flex; gap: .5rem; }
        input { flex: 1; padding: .5rem; }
    </style>
</head>
<body>
    <h1>docqa</h1>
    <p>Ask questions about your uploaded documents.</p>
    <div id="messages"></div>
    <form onsubmit="ask(event)">
        <input type="text" id="q" placeholder="Ask about your documents..." autocomplete="off" required>
        <button type="submit">Send</button>
    </form>
    <script>
        function ask(e) {
            e.preventDefault();
            const input = document.getElementById('q');
            const messages = document.getElementById('messages');
            const q = input.value.trim();
            if (!q) return;
            messages.insertAdjacentHTML('beforeend', '<div class="message user"></div>');
            messages.lastChild.textContent = q;
            const el = document.createElement('div');
            el.className = 'message assistant';
            messages.appendChild(el);
            input.value = '';
            const es = new EventSource('/api/ask/stream?q=' + encodeURIComponent(q));
            es.onmessage = function(ev) {
                const data = JSON.parse(ev.data);
                if (data.content) el.textContent += data.content;
                if (data.done) es.close();
            };
            es.onerror = function() { es.close(); };
        }
    </script>
</body>
</html>`

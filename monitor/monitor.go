package monitor

import (
	"crypto/subtle"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// maxLogBytes caps how much of the log file /logs returns.
const maxLogBytes = 256 << 10

// Register mounts the log viewer page and the raw log endpoint. Both require
// ?token= to match token; an empty token disables them.
func Register(router gin.IRouter, token, logPath string) {
	if token == "" {
		return
	}
	guard := func(c *gin.Context) {
		got := c.Query("token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}

	router.GET("/monitor", guard, func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(monitorPage))
	})

	router.GET("/logs", guard, func(c *gin.Context) {
		data, err := tail(logPath, maxLogBytes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	})
}

// tail returns at most n trailing bytes of the file at path.
func tail(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > n {
		if _, err := f.Seek(info.Size()-n, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(io.LimitReader(f, n))
}

const monitorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Discovery API Monitor</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      background: #111827;
      color: #e5e7eb;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      padding: 20px;
    }
    .container { max-width: 1200px; margin: 0 auto; }
    h1 { font-size: 1.75rem; margin-bottom: 1.5rem; color: #a5b4fc; }
    .card {
      background: #1f2937;
      border: 1px solid #374151;
      border-radius: 12px;
      padding: 1rem 1.25rem;
      margin-bottom: 1.5rem;
    }
    .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 0.75rem; }
    button {
      background: #4f46e5; color: #fff; border: 0; border-radius: 8px;
      padding: 0.5rem 1rem; cursor: pointer;
    }
    button.paused { background: #6b7280; }
    #logs {
      background: #030712; border-radius: 8px; padding: 1rem;
      max-height: 600px; overflow-y: auto; white-space: pre-wrap;
      font-family: 'SFMono-Regular', Consolas, monospace; font-size: 0.8rem;
    }
  </style>
</head>
<body>
  <div class="container">
    <h1>Discovery API Monitor</h1>
    <div class="card" id="status">Status: checking...</div>
    <div class="card">
      <div class="header">
        <strong>Server logs</strong>
        <button onclick="toggleLive()" id="toggleBtn">Pause live logs</button>
      </div>
      <pre id="logs">Loading logs...</pre>
    </div>
  </div>
  <script>
    const token = new URLSearchParams(window.location.search).get('token') || '';
    const logsElement = document.getElementById('logs');
    const statusElement = document.getElementById('status');
    const toggleBtn = document.getElementById('toggleBtn');
    let liveLogs = true;

    function fetchStatus() {
      fetch('/health')
        .then(res => res.json())
        .then(data => { statusElement.textContent = 'Status: ' + (data.status === 'ok' ? 'online' : 'degraded'); })
        .catch(() => { statusElement.textContent = 'Status: offline'; });
    }

    function fetchLogs() {
      if (!liveLogs) return;
      fetch('/logs?token=' + encodeURIComponent(token))
        .then(res => res.text())
        .then(data => {
          logsElement.textContent = data;
          logsElement.scrollTop = logsElement.scrollHeight;
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      toggleBtn.textContent = liveLogs ? 'Pause live logs' : 'Resume live logs';
      toggleBtn.classList.toggle('paused', !liveLogs);
    }

    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`

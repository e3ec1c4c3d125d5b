package web

// Single-page dashboard: wager form, paginated history table, live SSE updates.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Redbet</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
      --win:#1b9aaa;
      --loss:#d7263d;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:flex-start;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    body::before {
      content:'';
      position:fixed;
      inset:0;
      background:
        linear-gradient(90deg, rgba(0,0,0,.02) 1px, transparent 1px),
        linear-gradient(rgba(0,0,0,.02) 1px, transparent 1px);
      background-size:12px 12px;
      pointer-events:none;
    }
    #app {
      width:min(960px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      position:relative;
      image-rendering:pixelated;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:1.5rem;
    }
    #app::after {
      content:'';
      position:absolute;
      inset:8px;
      border:1px dashed rgba(0,0,0,.15);
      pointer-events:none;
    }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .form-card, .table-card {
      border:3px solid var(--ink);
      padding:1.5rem;
      background:#fff;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
    }
    .form-row { display:flex; gap:.8rem; flex-wrap:wrap; align-items:center; }
    input, select {
      font-family:inherit;
      font-size:.8rem;
      padding:.5rem .7rem;
      border:2px solid var(--ink);
      background:#fff;
    }
    button {
      font-family:inherit;
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.12em;
      padding:.55rem 1rem;
      border:2px solid var(--ink);
      background:#fff;
      cursor:pointer;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    button:active { transform:translate(2px,2px); box-shadow:2px 2px 0 rgba(0,0,0,.15); }
    button.danger { border-color:var(--loss); color:var(--loss); }
    table { width:100%; border-collapse:collapse; font-size:.72rem; }
    th, td { text-align:left; padding:.5rem .6rem; border-bottom:1px dashed var(--ink-soft); }
    th { text-transform:uppercase; letter-spacing:.12em; font-size:.58rem; color:var(--ink-mid); }
    .won { color:var(--win); font-weight:700; }
    .lost { color:var(--loss); font-weight:700; }
    .pending { color:var(--ink-soft); }
    .pager {
      display:flex;
      justify-content:space-between;
      align-items:center;
      margin-top:1rem;
      font-size:.62rem;
      text-transform:uppercase;
      letter-spacing:.1em;
    }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
    @media (max-width:640px) {
      body { padding:1rem; }
      #app { padding:1.2rem; }
      header { flex-direction:column; align-items:flex-start; }
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <div>
        <p class="eyebrow">redbet ledger</p>
      </div>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section class="form-card">
      <div class="form-row">
        <input id="amount" type="text" placeholder="stake (bits)" size="12" />
        <select id="kind">
          <option value="red">red</option>
          <option value="lo">lo</option>
          <option value="ut">ut</option>
        </select>
        <button id="placeBtn">Place wager</button>
        <button id="balanceBtn">Balance</button>
        <button id="clearBtn" class="danger">Clear history</button>
      </div>
    </section>
    <section class="table-card">
      <div id="historyWrap"></div>
      <div class="pager">
        <button id="prevBtn">&laquo; newer</button>
        <span id="pageInfo"></span>
        <button id="nextBtn">older &raquo;</button>
      </div>
    </section>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const historyWrap = document.getElementById('historyWrap');
const pageInfo = document.getElementById('pageInfo');
const prevBtn = document.getElementById('prevBtn');
const nextBtn = document.getElementById('nextBtn');
let page = 0;

const formatTs = (ts) => {
  const date = new Date(ts);
  if(Number.isNaN(date.getTime())){ return '—'; }
  return date.toLocaleString([], { hour12:false });
};

function statusClass(status){
  if(status === 'won') return 'won';
  if(status === 'lost') return 'lost';
  return 'pending';
}

function renderHistory(payload){
  if(!payload.data || payload.data.length === 0){
    historyWrap.innerHTML = '<div class="empty-state">No wagers recorded yet</div>';
  } else {
    const rows = payload.data.map((rec) => {
      const settlement = rec.settlement !== undefined && rec.settlement !== null ? rec.settlement : '—';
      return '<tr>' +
        '<td>' + formatTs(rec.created_at) + '</td>' +
        '<td>' + rec.kind + '</td>' +
        '<td>' + rec.amount + '</td>' +
        '<td class="' + statusClass(rec.status) + '">' + rec.status + '</td>' +
        '<td>' + settlement + '</td>' +
        '</tr>';
    }).join('');
    historyWrap.innerHTML = '<table><thead><tr>' +
      '<th>Time</th><th>Side</th><th>Stake</th><th>Status</th><th>Settlement</th>' +
      '</tr></thead><tbody>' + rows + '</tbody></table>';
  }
  pageInfo.textContent = 'page ' + (payload.current_page + 1) + ' / ' + Math.max(payload.total_pages, 1) +
    ' (' + payload.total_items + ' wagers)';
  prevBtn.disabled = !payload.has_prev;
  nextBtn.disabled = !payload.has_next;
}

async function loadHistory(){
  try{
    const resp = await fetch('/api/history?page=' + page);
    renderHistory(await resp.json());
  }catch(err){
    console.error('history load', err);
  }
}

prevBtn.addEventListener('click', () => { if(page > 0){ page -= 1; loadHistory(); } });
nextBtn.addEventListener('click', () => { page += 1; loadHistory(); });

document.getElementById('placeBtn').addEventListener('click', async () => {
  const amount = document.getElementById('amount').value;
  const kind = document.getElementById('kind').value;
  try{
    const resp = await fetch('/api/wagers', {
      method:'POST',
      headers:{'Content-Type':'application/json'},
      body:JSON.stringify({ amount, kind })
    });
    if(!resp.ok){
      const body = await resp.json();
      alert(body.error || 'wager rejected');
    }
  }catch(err){
    console.error('place wager', err);
  }
});

document.getElementById('balanceBtn').addEventListener('click', () => {
  fetch('/api/balance', { method:'POST' }).catch((err) => console.error('balance', err));
});

document.getElementById('clearBtn').addEventListener('click', async () => {
  if(!confirm('Erase the whole wager history?')){ return; }
  await fetch('/api/history/clear', { method:'POST' });
  page = 0;
  loadHistory();
});

function connectSSE(){
  const source = new EventSource('/events');
  statusEl.textContent = 'Live';
  const refresh = () => { page = 0; loadHistory(); };
  source.addEventListener('settled', refresh);
  source.addEventListener('cleared', refresh);
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

loadHistory();
connectSSE();
</script>
</body>
</html>`

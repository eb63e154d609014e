package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Announcement.IssuerSign}} – {{.Content.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #eef1f5;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #1f2933;
      line-height: 1.55;
    }

    .card {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border: 1px solid #d9e2ec;
      border-radius: 8px;
      overflow: hidden;
    }

    .banner {
      padding: 20px 24px;
      background: #00205b;
      color: #ffffff;
    }

    .sign {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
    }

    .issuer {
      font-size: 13px;
      opacity: 0.8;
    }

    .headline {
      margin-top: 6px;
      font-size: 16px;
    }

    .tag {
      display: inline-block;
      margin-top: 8px;
      padding: 3px 8px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      background: #f0b429;
      color: #1f2933;
      text-transform: uppercase;
    }

    .block {
      padding: 16px 24px;
      border-top: 1px solid #eef1f5;
    }

    .block-title {
      font-size: 11px;
      font-weight: 700;
      color: #627d98;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 10px;
    }

    .meta td {
      padding: 4px 16px 4px 0;
      font-size: 14px;
      vertical-align: top;
    }

    .meta td.label {
      color: #627d98;
      white-space: nowrap;
    }

    .body p {
      margin: 0 0 12px 0;
      font-size: 14px;
      white-space: pre-line;
    }

    .facts li {
      margin-bottom: 8px;
      font-size: 14px;
    }

    .fact-category {
      display: inline-block;
      padding: 2px 6px;
      font-size: 10px;
      font-weight: 600;
      background: #e0e8f9;
      color: #00205b;
      border-radius: 3px;
      text-transform: uppercase;
    }

    .button {
      display: inline-block;
      margin-top: 12px;
      padding: 10px 20px;
      font-size: 14px;
      font-weight: 600;
      color: #ffffff !important;
      background: #00205b;
      border-radius: 6px;
      text-decoration: none;
    }

    .footer {
      padding: 14px 24px;
      font-size: 12px;
      color: #9fb3c8;
      text-align: center;
      background: #f5f7fa;
    }
  </style>
</head>
<body>
  <div class="card">
    <div class="banner">
      <div class="sign">{{.Announcement.IssuerSign}}</div>
      {{if .Announcement.IssuerName}}<div class="issuer">{{.Announcement.IssuerName}}</div>{{end}}
      <div class="headline">{{.Content.Title}}</div>
      {{if .Announcement.CorrectionForMessageID}}<span class="tag">Correction</span>{{end}}
    </div>

    <div class="block">
      <div class="block-title">Details</div>
      <table class="meta">
        {{with formatDate .}}<tr><td class="label">Published</td><td>{{.}}</td></tr>{{end}}
        {{if .Announcement.Category}}<tr><td class="label">Category</td><td>{{range $i, $c := .Announcement.Category}}{{if $i}}, {{end}}{{$c}}{{end}}</td></tr>{{end}}
        {{if .Announcement.Markets}}<tr><td class="label">Markets</td><td>{{range $i, $m := .Announcement.Markets}}{{if $i}}, {{end}}{{$m}}{{end}}</td></tr>{{end}}
        {{if .Announcement.Attachments}}<tr><td class="label">Attachments</td><td>{{.Announcement.Attachments}}</td></tr>{{end}}
      </table>
      {{if .URL}}<a href="{{.URL}}" class="button" target="_blank" rel="noopener">Open on Newsweb →</a>{{end}}
    </div>

    {{with .Paragraphs}}
    <div class="block body">
      {{range .}}<p>{{.}}</p>
      {{end}}
    </div>
    {{end}}

    {{if .Analysis}}
      {{if .Analysis.Summary}}
      <div class="block">
        <div class="block-title">AI Summary</div>
        <ul class="facts">
          {{range .Analysis.Summary}}<li>{{.}}</li>
          {{end}}
        </ul>
      </div>
      {{end}}
      {{if .Analysis.KeyFacts}}
      <div class="block">
        <div class="block-title">Key Facts</div>
        <ul class="facts">
          {{range .Analysis.KeyFacts}}<li><span class="fact-category">{{.Category}}</span> {{.Details}}</li>
          {{end}}
        </ul>
      </div>
      {{end}}
    {{end}}

    <div class="footer">
      Sent by oslonotify because you watch {{.Announcement.IssuerSign}}.
    </div>
  </div>
</body>
</html>`

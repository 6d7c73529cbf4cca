// Package bookmarklet builds the JavaScript payload users drag to their
// bookmarks bar. Building is cheap but happens on every toolbar click, so the
// built artifact is cached as explicit process-scoped state with a timestamp
// plus a max age — never as an implicit global with hidden staleness rules.
package bookmarklet

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Builder renders and caches the bookmarklet script for one endpoint.
type Builder struct {
	endpoint string
	maxAge   time.Duration

	mu      sync.Mutex
	built   string
	builtAt time.Time
	now     func() time.Time
}

// New returns a Builder targeting the given ask endpoint URL. The built script
// is rebuilt once the cached copy is older than maxAge, so endpoint or
// template changes picked up on restart do not require cache plumbing.
func New(endpoint string, maxAge time.Duration) *Builder {
	return &Builder{
		endpoint: endpoint,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Script returns the bookmarklet JavaScript, rebuilding it when the cached
// artifact is stale.
func (b *Builder) Script() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built != "" && b.now().Sub(b.builtAt) < b.maxAge {
		return b.built
	}

	b.built = render(b.endpoint)
	b.builtAt = b.now()
	return b.built
}

// render produces the single-line bookmarklet body. The script extracts the
// visible page text, prompts for a question, streams the SSE response from the
// ask endpoint, and appends fragments to an overlay as they arrive.
func render(endpoint string) string {
	script := fmt.Sprintf(bookmarkletTemplate, endpoint)
	// Bookmarklets must be a single javascript: URL line.
	script = strings.ReplaceAll(script, "\n", "")
	script = strings.ReplaceAll(script, "\t", "")
	return "javascript:" + script
}

const bookmarkletTemplate = `(async()=>{
	const q=prompt('Ask about this page:');
	if(!q)return;
	let box=document.getElementById('askpage-box');
	if(!box){
		box=document.createElement('div');
		box.id='askpage-box';
		box.style.cssText='position:fixed;bottom:16px;right:16px;max-width:420px;max-height:50vh;overflow:auto;background:#1e1e1e;color:#eee;padding:12px;border-radius:8px;font:13px/1.5 sans-serif;white-space:pre-wrap;z-index:2147483647';
		document.body.appendChild(box);
	}
	box.textContent='';
	const res=await fetch('%s',{
		method:'POST',
		headers:{'Content-Type':'application/json'},
		body:JSON.stringify({provider:window.askpageProvider||'local',question:q,page_content:document.body.innerText.slice(0,20000),page_url:location.href})
	});
	const reader=res.body.getReader();
	const dec=new TextDecoder();
	let buf='';
	for(;;){
		const{done,value}=await reader.read();
		if(done)break;
		buf+=dec.decode(value,{stream:true});
		const records=buf.split('\n\n');
		buf=records.pop();
		for(const rec of records){
			if(!rec.startsWith('data: '))continue;
			const data=rec.slice(6);
			if(data==='[DONE]')return;
			try{
				const evt=JSON.parse(data);
				if(evt.error){box.textContent+='\n[error] '+evt.error;return;}
				if(evt.content)box.textContent+=evt.content;
			}catch(e){}
		}
	}
})();`

package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "board.json")
	p.OnLoadComplete(ctx, "board.json", 40, time.Second, nil)
	p.OnLayoutStart(ctx, 40)
	p.OnLayoutComplete(ctx, 40, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	l := NoopLayoutHooks{}
	l.OnPass(ctx, PassInfo{Items: 40, Measured: 12})
	l.OnInvalidate(ctx, "items-changed")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/board.json")
	h.OnResponse(ctx, "GET", "example.com", "/board.json", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/board.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}
}

func TestLayoutHooksReceivePasses(t *testing.T) {
	Reset()
	defer Reset()

	rec := &testLayoutHooks{}
	SetLayoutHooks(rec)
	Layout().OnPass(context.Background(), PassInfo{Items: 10, Realized: 4})
	Layout().OnPass(context.Background(), PassInfo{Items: 10, Realized: 1})

	if len(rec.passes) != 2 {
		t.Fatalf("recorded %d passes, want 2", len(rec.passes))
	}
	if rec.passes[1].Realized != 1 {
		t.Errorf("second pass Realized = %d, want 1", rec.passes[1].Realized)
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type testLayoutHooks struct {
	NoopLayoutHooks
	passes []PassInfo
}

func (h *testLayoutHooks) OnPass(_ context.Context, info PassInfo) {
	h.passes = append(h.passes, info)
}

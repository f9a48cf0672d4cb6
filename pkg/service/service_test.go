package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clawboard/clawboard/pkg/config"
	"github.com/clawboard/clawboard/pkg/gateway"
	"github.com/clawboard/clawboard/pkg/graph"
)

func newTestServer(t *testing.T) (*Server, *config.Config, *gateway.FakeClient) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.New(t.TempDir(), t.TempDir())
	fake := gateway.NewFakeClient()
	fake.CLIResponses["agents list"] = `{"agents":[{"id":"dev","name":"Dev"}]}`
	return NewServer(cfg, fake), cfg, fake
}

func doJSON(t *testing.T, srv *Server, method, target string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeGraphResponse(t *testing.T, resp *http.Response) graphResponse {
	t.Helper()
	var out graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func waitForCLICalls(t *testing.T, fake *gateway.FakeClient, prefix string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fake.CLICallCount(prefix) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d %q calls, got %d", want, prefix, fake.CLICallCount(prefix))
}

func TestGetGraph(t *testing.T) {
	Convey("Given a server with no persisted graph", t, func() {
		srv, cfg, _ := newTestServer(t)

		Convey("When the graph is requested", func() {
			resp := doJSON(t, srv, http.MethodGet, "/api/memory/graph", nil)

			Convey("Then a bootstrap graph comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				out := decodeGraphResponse(t, resp)
				So(out.Graph, ShouldNotBeNil)
				So(out.Bootstrap, ShouldNotBeNil)
				So(out.Bootstrap.Source, ShouldEqual, "filesystem")
				So(out.Bootstrap.ExtractionError, ShouldContainSubstring, "no LLM API key")
				So(out.Workspace, ShouldEqual, cfg.Workspace)

				ids := map[string]bool{}
				for _, node := range out.Graph.Nodes {
					ids[node.ID] = true
				}
				So(ids[graph.RootID], ShouldBeTrue)
				So(ids["agent-dev"], ShouldBeTrue)
			})

			Convey("And the graph files are persisted", func() {
				So(fileExists(cfg.GraphJSONPath), ShouldBeTrue)
				So(fileExists(cfg.GraphMarkdownPath), ShouldBeTrue)
			})

			Convey("And a second request loads instead of rebuilding", func() {
				second := decodeGraphResponse(t, doJSON(t, srv, http.MethodGet, "/api/memory/graph", nil))
				So(second.Bootstrap, ShouldBeNil)
				So(len(second.Graph.Nodes), ShouldEqual, len(decodeStoredGraph(t, cfg).Nodes))
			})
		})
	})

	Convey("Given a persisted graph and a grown roster", t, func() {
		srv, cfg, fake := newTestServer(t)
		doJSON(t, srv, http.MethodGet, "/api/memory/graph", nil)

		fake.CLIResponses["agents list"] = `{"agents":[{"id":"dev","name":"Dev"},{"id":"ops","name":"Ops"}]}`

		Convey("A read injects the missing agent without rebuilding", func() {
			out := decodeGraphResponse(t, doJSON(t, srv, http.MethodGet, "/api/memory/graph", nil))

			So(out.Bootstrap, ShouldBeNil)
			ids := map[string]bool{}
			for _, node := range out.Graph.Nodes {
				ids[node.ID] = true
			}
			So(ids["agent-ops"], ShouldBeTrue)

			// The injection is read-side only.
			stored := decodeStoredGraph(t, cfg)
			storedIDs := map[string]bool{}
			for _, node := range stored.Nodes {
				storedIDs[node.ID] = true
			}
			So(storedIDs["agent-ops"], ShouldBeFalse)
		})
	})
}

func TestPostGraphSave(t *testing.T) {
	Convey("Given a server", t, func() {
		srv, cfg, fake := newTestServer(t)

		Convey("Saving a messy graph normalizes and persists it", func() {
			falseVal := false
			resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
				"action":  "save",
				"reindex": &falseVal,
				"graph": map[string]any{
					"nodes": []map[string]any{
						{"id": "My Node!!", "label": "Alpha", "confidence": 4},
						{"label": "Beta"},
					},
					"edges": []map[string]any{
						{"source": "My Node!!", "target": "beta", "relation": "uses"},
						{"source": "ghost", "target": "beta"},
					},
				},
			})

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			out := decodeGraphResponse(t, resp)

			So(len(out.Graph.Nodes), ShouldEqual, 2)
			So(out.Graph.Nodes[0].ID, ShouldEqual, "my-node")
			So(out.Graph.Nodes[0].Confidence, ShouldEqual, 1.0)
			So(len(out.Graph.Edges), ShouldEqual, 1)
			So(out.Graph.Edges[0].Source, ShouldEqual, "my-node")

			So(fileExists(cfg.GraphJSONPath), ShouldBeTrue)
			So(fileExists(cfg.GraphMarkdownPath), ShouldBeTrue)

			Convey("And reindex:false fires no reindex at all", func() {
				time.Sleep(50 * time.Millisecond)
				So(fake.CLICallCount("memory index"), ShouldEqual, 0)
			})
		})

		Convey("Saving without suppression fires one async reindex", func() {
			fake.CLIResponses["memory index"] = `ok`
			resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
				"action": "save",
				"graph":  map[string]any{"nodes": []any{}, "edges": []any{}},
			})

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			waitForCLICalls(t, fake, "memory index", 1)
		})

		Convey("A save without a graph is rejected", func() {
			resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
				"action": "save",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown action is rejected", func() {
			resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
				"action": "destroy",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPostGraphPublish(t *testing.T) {
	Convey("Given a server with a persisted graph", t, func() {
		srv, cfg, _ := newTestServer(t)
		falseVal := false

		doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
			"action":  "save",
			"reindex": &falseVal,
			"graph": map[string]any{
				"nodes": []map[string]any{{"id": "alpha", "label": "Alpha"}},
				"edges": []any{},
			},
		})

		Convey("Publishing writes the snapshot into MEMORY.md", func() {
			existing := "# My Memory\n\nHand-written notes.\n"
			So(os.WriteFile(cfg.MemoryFilePath, []byte(existing), 0o644), ShouldBeNil)

			resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
				"action":  "publish-memory-md",
				"reindex": &falseVal,
			})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			data, err := os.ReadFile(cfg.MemoryFilePath)
			So(err, ShouldBeNil)
			content := string(data)
			So(content, ShouldStartWith, existing)
			So(content, ShouldContainSubstring, "<!-- KNOWLEDGE_GRAPH:START -->")
			So(content, ShouldContainSubstring, "Alpha")

			Convey("And publishing again replaces rather than appends", func() {
				resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
					"action":  "publish-memory-md",
					"reindex": &falseVal,
				})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				again, err := os.ReadFile(cfg.MemoryFilePath)
				So(err, ShouldBeNil)
				So(bytes.Count(again, []byte("<!-- KNOWLEDGE_GRAPH:START -->")), ShouldEqual, 1)
			})
		})
	})

	Convey("Publishing with no persisted graph is a 404", t, func() {
		srv, _, _ := newTestServer(t)
		falseVal := false

		resp := doJSON(t, srv, http.MethodPost, "/api/memory/graph", map[string]any{
			"action":  "publish-memory-md",
			"reindex": &falseVal,
		})
		So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
	})
}

func TestRuntimePassthroughs(t *testing.T) {
	Convey("Given a reachable runtime", t, func() {
		srv, _, fake := newTestServer(t)
		fake.RPCResponses["sessions.list"] = `{"sessions":[{"key":"s1","label":"planning","updatedAt":1}]}`

		Convey("The agent roster passes through", func() {
			resp := doJSON(t, srv, http.MethodGet, "/api/agents", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out struct {
				Agents []gateway.Agent `json:"agents"`
			}
			So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
			So(len(out.Agents), ShouldEqual, 1)
			So(out.Agents[0].ID, ShouldEqual, "dev")
		})

		Convey("Sessions pass through", func() {
			resp := doJSON(t, srv, http.MethodGet, "/api/sessions", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out struct {
				Sessions []gateway.Session `json:"sessions"`
			}
			So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
			So(len(out.Sessions), ShouldEqual, 1)
		})
	})

	Convey("Given an unreachable runtime", t, func() {
		srv, _, fake := newTestServer(t)
		fake.Err = errors.New("runtime down")

		Convey("Pass-throughs answer 500 with the stringified error", func() {
			resp := doJSON(t, srv, http.MethodGet, "/api/agents", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)

			var out struct {
				Message string `json:"message"`
			}
			So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
			So(out.Message, ShouldContainSubstring, "runtime down")
		})
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func decodeStoredGraph(t *testing.T, cfg *config.Config) *graph.KnowledgeGraph {
	t.Helper()
	data, err := os.ReadFile(cfg.GraphJSONPath)
	if err != nil {
		t.Fatal(err)
	}
	var g graph.KnowledgeGraph
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatal(err)
	}
	return &g
}

package list

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/shopper/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		store   *mockStore
		state   *State
		server  *Server
		resp    *httptest.ResponseRecorder
		req     *http.Request
		reqBody string
	)

	doJSON := func(method, path, body string) {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp = httptest.NewRecorder()
		server.ServeHTTP(resp, req)
	}

	BeforeEach(func() {
		store = newMockStore()
		state = NewStateWithDeps(store, &mockIDGenerator{}, &mockTimeSource{now: 1700000000000})
		state.Load()
		server = NewServer(state, scanning.NewLocal(), BasicAuth{})
		reqBody = ""
	})

	Describe("POST /api/items", func() {
		JustBeforeEach(func() {
			doJSON("POST", "/api/items", reqBody)
		})

		When("the body carries a raw entry line", func() {
			BeforeEach(func() {
				reqBody = `{"entry": "2 milk"}`
			})

			It("returns 201", func() {
				Expect(resp.Code).To(Equal(http.StatusCreated))
			})

			It("parses name and quantity from the entry", func() {
				var item ShoppingItem
				Expect(json.Unmarshal(resp.Body.Bytes(), &item)).To(Succeed())
				Expect(item.Name).To(Equal("milk"))
				Expect(item.Quantity).To(Equal(2))
			})
		})

		When("the body carries explicit fields", func() {
			BeforeEach(func() {
				reqBody = `{"name": "Eggs", "quantity": 12, "unit": "pcs"}`
			})

			It("returns 201 with the item", func() {
				Expect(resp.Code).To(Equal(http.StatusCreated))
				var item ShoppingItem
				Expect(json.Unmarshal(resp.Body.Bytes(), &item)).To(Succeed())
				Expect(item.Name).To(Equal("Eggs"))
				Expect(item.Quantity).To(Equal(12))
				Expect(item.Unit).To(Equal("pcs"))
			})
		})

		When("the name is blank", func() {
			BeforeEach(func() {
				reqBody = `{"name": "   "}`
			})

			It("returns 400", func() {
				Expect(resp.Code).To(Equal(http.StatusBadRequest))
			})
		})

		When("the body is not JSON", func() {
			BeforeEach(func() {
				reqBody = "not json"
			})

			It("returns 400", func() {
				Expect(resp.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("GET /api/items", func() {
		It("returns an empty array when the list is empty", func() {
			doJSON("GET", "/api/items", "")
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(resp.Body.String())).To(Equal("[]"))
		})

		It("returns the items", func() {
			_, err := state.AddItem("Milk", 1, "")
			Expect(err).NotTo(HaveOccurred())

			doJSON("GET", "/api/items", "")
			var items []ShoppingItem
			Expect(json.Unmarshal(resp.Body.Bytes(), &items)).To(Succeed())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("Milk"))
		})
	})

	Describe("item mutations", func() {
		var id string

		BeforeEach(func() {
			item, err := state.AddItem("Milk", 1, "")
			Expect(err).NotTo(HaveOccurred())
			id = item.ID
		})

		It("toggles an item", func() {
			doJSON("POST", "/api/items/"+id+"/toggle", "")
			Expect(resp.Code).To(Equal(http.StatusOK))
			var item ShoppingItem
			Expect(json.Unmarshal(resp.Body.Bytes(), &item)).To(Succeed())
			Expect(item.Checked).To(BeTrue())
		})

		It("returns 404 toggling an unknown item", func() {
			doJSON("POST", "/api/items/nope/toggle", "")
			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})

		It("updates an item", func() {
			doJSON("PUT", "/api/items/"+id, `{"name": "Oat Milk", "quantity": 2}`)
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(state.Items()[0].Name).To(Equal("Oat Milk"))
		})

		It("returns 404 updating an unknown item", func() {
			doJSON("PUT", "/api/items/nope", `{"name": "x"}`)
			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})

		It("removes an item", func() {
			doJSON("DELETE", "/api/items/"+id, "")
			Expect(resp.Code).To(Equal(http.StatusNoContent))
			Expect(state.Items()).To(BeEmpty())
		})

		It("clears checked items", func() {
			_, ok := state.ToggleItem(id)
			Expect(ok).To(BeTrue())

			doJSON("DELETE", "/api/items/checked", "")
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Body.String()).To(ContainSubstring(`"removed":1`))
			Expect(state.Items()).To(BeEmpty())
		})
	})

	Describe("GET /api/suggestions", func() {
		BeforeEach(func() {
			_, err := state.AddItem("Whole Milk", 1, "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns matching history entries", func() {
			doJSON("GET", "/api/suggestions?q=milk", "")
			Expect(resp.Code).To(Equal(http.StatusOK))
			var suggestions []string
			Expect(json.Unmarshal(resp.Body.Bytes(), &suggestions)).To(Succeed())
			Expect(suggestions).To(Equal([]string{"Whole Milk"}))
		})

		It("returns an empty array for a blank query", func() {
			doJSON("GET", "/api/suggestions", "")
			Expect(strings.TrimSpace(resp.Body.String())).To(Equal("[]"))
		})
	})

	Describe("POST /api/scans/detections", func() {
		var milkID string

		BeforeEach(func() {
			item, err := state.AddItem("Milk", 1, "")
			Expect(err).NotTo(HaveOccurred())
			milkID = item.ID
		})

		When("the detections identify a listed product", func() {
			JustBeforeEach(func() {
				doJSON("POST", "/api/scans/detections", `{"barcode": "0123456789012", "texts": ["Whole Milk 3.25%", "exp 15/03/25"]}`)
			})

			It("returns 200", func() {
				Expect(resp.Code).To(Equal(http.StatusOK))
			})

			It("reports the matched item", func() {
				var body scanResponse
				Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
				Expect(body.Result.Success).To(BeTrue())
				Expect(body.MatchedItemID).To(Equal(milkID))
			})

			It("checks the item off", func() {
				Expect(state.Items()[0].Checked).To(BeTrue())
			})

			It("records scanned-item metadata", func() {
				Expect(state.ScannedItems()).To(HaveLen(1))
				Expect(state.ScannedItems()[0].ExpiryDate).To(Equal("15/03/25"))
			})
		})

		When("the detections identify nothing", func() {
			JustBeforeEach(func() {
				doJSON("POST", "/api/scans/detections", `{"texts": ["ab"]}`)
			})

			It("returns 200 with the failed result", func() {
				Expect(resp.Code).To(Equal(http.StatusOK))
				var body scanResponse
				Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
				Expect(body.Result.Success).To(BeFalse())
				Expect(body.Result.Error).NotTo(BeEmpty())
				Expect(body.MatchedItemID).To(BeEmpty())
			})

			It("leaves the state unchanged", func() {
				Expect(state.Items()[0].Checked).To(BeFalse())
				Expect(state.ScannedItems()).To(BeEmpty())
			})
		})
	})

	Describe("GET /api/scanned-items", func() {
		It("returns an empty array when nothing was scanned", func() {
			doJSON("GET", "/api/scanned-items", "")
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(resp.Body.String())).To(Equal("[]"))
		})
	})

	Describe("POST /api/scans", func() {
		It("rejects a request without a file", func() {
			var buf bytes.Buffer
			req = httptest.NewRequest("POST", "/api/scans", &buf)
			req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
			resp = httptest.NewRecorder()
			server.ServeHTTP(resp, req)
			Expect(resp.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			server = NewServer(state, scanning.NewLocal(), BasicAuth{Username: "user", Password: "pass"})
		})

		It("rejects unauthenticated requests", func() {
			doJSON("GET", "/api/items", "")
			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("accepts valid credentials", func() {
			req = httptest.NewRequest("GET", "/api/items", nil)
			req.SetBasicAuth("user", "pass")
			resp = httptest.NewRecorder()
			server.ServeHTTP(resp, req)
			Expect(resp.Code).To(Equal(http.StatusOK))
		})

		It("rejects wrong credentials", func() {
			req = httptest.NewRequest("GET", "/api/items", nil)
			req.SetBasicAuth("user", "wrong")
			resp = httptest.NewRecorder()
			server.ServeHTTP(resp, req)
			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

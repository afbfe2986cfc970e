package list

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/shopper/internal/scanning"
)

var _ = Describe("BoltStore", func() {
	var (
		dbPath string
		store  *BoltStore
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	When("no data has been saved", func() {
		It("returns an empty shopping list", func() {
			items, err := store.GetShoppingList()
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("returns empty scanned items", func() {
			items, err := store.GetScannedItems()
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("returns an empty history", func() {
			names, err := store.GetItemHistory()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(BeEmpty())
		})
	})

	Describe("shopping list round trip", func() {
		var items []ShoppingItem

		BeforeEach(func() {
			items = []ShoppingItem{{
				ID:        "a",
				Name:      "Milk",
				Quantity:  2,
				Unit:      "L",
				Barcode:   "0123456789012",
				CreatedAt: 1700000000000,
				UpdatedAt: 1700000000000,
			}}
			Expect(store.SaveShoppingList(items)).To(Succeed())
		})

		It("returns what was saved", func() {
			loaded, err := store.GetShoppingList()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(items))
		})

		It("replaces the collection on the next save", func() {
			Expect(store.SaveShoppingList([]ShoppingItem{})).To(Succeed())
			loaded, err := store.GetShoppingList()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeEmpty())
		})
	})

	Describe("scanned items round trip", func() {
		It("returns what was saved", func() {
			items := []ScannedItemMetadata{{
				ID:            "s1",
				Name:          "Whole Milk",
				Barcode:       "0123456789012",
				Category:      scanning.CategoryDairy,
				ExpiryDate:    "15/03/2025",
				LastScannedAt: 1700000000000,
			}}
			Expect(store.SaveScannedItems(items)).To(Succeed())

			loaded, err := store.GetScannedItems()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(items))
		})
	})

	Describe("item history round trip", func() {
		It("preserves order", func() {
			names := []string{"milk", "bread", "eggs"}
			Expect(store.SaveItemHistory(names)).To(Succeed())

			loaded, err := store.GetItemHistory()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(names))
		})
	})

	It("persists across reopen", func() {
		Expect(store.SaveItemHistory([]string{"milk"})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())

		loaded, err := store.GetItemHistory()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal([]string{"milk"}))
	})
})

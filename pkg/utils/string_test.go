package utils_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/vecpeek/pkg/utils"
)

var _ = Describe("Truncate", func() {
	It("should leave short strings alone", func() {
		Expect(utils.Truncate("hello", 100)).To(Equal("hello"))
	})

	It("should leave a string of exactly maxLen alone", func() {
		s := strings.Repeat("a", 100)
		Expect(utils.Truncate(s, 100)).To(Equal(s))
	})

	It("should cut a string one character over maxLen to maxLen-3 plus ellipsis", func() {
		s := strings.Repeat("a", 101)
		out := utils.Truncate(s, 100)
		Expect(out).To(HaveLen(100))
		Expect(out).To(Equal(strings.Repeat("a", 97) + "..."))
	})

	It("should never render more than maxLen characters", func() {
		s := strings.Repeat("x", 500)
		Expect(len(utils.Truncate(s, 100))).To(Equal(100))
	})

	It("should leave multi-byte text of exactly maxLen characters alone", func() {
		s := strings.Repeat("数", 100)
		Expect(utils.Truncate(s, 100)).To(Equal(s))
	})

	It("should cut multi-byte text on rune boundaries", func() {
		s := strings.Repeat("数", 101)
		out := utils.Truncate(s, 100)
		Expect(utf8.ValidString(out)).To(BeTrue())
		Expect(out).To(Equal(strings.Repeat("数", 97) + "..."))
		Expect(utf8.RuneCountInString(out)).To(Equal(100))
	})

	It("should handle tiny maxLen without panicking", func() {
		Expect(utils.Truncate("abcdef", 2)).To(Equal("ab"))
	})
})

var _ = Describe("Norm", func() {
	It("should return 0 for an empty vector", func() {
		Expect(utils.Norm(nil)).To(BeZero())
	})

	It("should compute the Euclidean norm", func() {
		Expect(utils.Norm([]float32{3, 4})).To(BeNumerically("~", 5.0, 1e-9))
	})
})

package tokenizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
)

var sampleTexts = map[string]string{
	"short": "Backend Developer Golang di Jakarta",
	"medium": `Kami mencari Backend Developer yang berpengalaman dengan Go dan PostgreSQL
        untuk membangun layanan pembayaran. Kandidat akan bekerja sama dengan tim
        produk, menulis kode yang teruji, dan menjaga sistem tetap andal. Posisi ini
        bersifat remote dengan kunjungan kantor sesekali ke Jakarta Selatan.`,
	"long": strings.Repeat(`Tanggung jawab: merancang API, menulis migrasi basis data,
        meninjau kode rekan kerja, memantau metrik produksi dan menangani insiden.
        Kualifikasi: minimal 3 tahun pengalaman, paham Docker, Kubernetes, Kafka,
        Redis, serta terbiasa dengan pengujian otomatis. `, 20),
}

func BenchmarkNormalize(b *testing.B) {
	n := New(locale.Default())
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = n.Normalize(text)
			}
		})
	}
}

func BenchmarkNormalizeParallel(b *testing.B) {
	n := New(locale.Default())
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = n.Normalize(text)
		}
	})
}

func BenchmarkNormalizeVaryingSize(b *testing.B) {
	n := New(locale.Default())
	baseWord := "backend developer golang jakarta remote "
	for _, size := range []int{10, 100, 500, 1000, 5000} {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = n.Normalize(text)
			}
		})
	}
}

package gamification

import "math/rand/v2"

// MotivationalQuotes is the pool shown after a reading session.
var MotivationalQuotes = []string{
	"Every page is a step toward wisdom. Keep going!",
	"Books are the quietest and most constant of friends.",
	"Reading is to the mind what exercise is to the body.",
	"A reader lives a thousand lives before dying.",
	"Today a reader, tomorrow a leader.",
	"The more that you read, the more things you will know.",
	"Reading gives us someplace to go when we have to stay where we are.",
	"A book is a dream that you hold in your hand.",
	"Reading is an exercise in empathy.",
	"The reading of all good books is like conversation with the finest minds.",
	"Books don't just go with you, they take you where you've never been.",
	"Read more, learn more, live more.",
	"A book a day keeps reality away.",
	"Let your bookshelf tell your story.",
	"Your mind deserves the nourishment that only reading gives.",
	"Reading opens doors that others don't even know exist.",
	"Get lost in a book and find yourself.",
	"Books are mirrors: you only see in them what you already have inside you.",
	"Turn the page, change your life.",
	"Reading fuels imagination like nothing else.",
	"Setiap halaman adalah langkah menuju impian.",
	"Buku adalah jendela dunia, teruslah membuka lembarannya!",
	"Kamu luar biasa! Satu halaman lagi, satu ilmu lagi.",
	"Bacaan hari ini, inspirasi esok hari.",
	"Teruslah membaca, dunia menantimu!",
	"Konsistensi kecil hari ini, hasil besar nanti.",
	"Buku adalah teman setia di setiap perjalanan hidup.",
	"Satu bab hari ini, satu kemenangan untuk dirimu.",
	"Jadilah pahlawan bagi dirimu sendiri lewat membaca.",
	"Setiap buku adalah petualangan baru. Nikmati!",
	"Membaca membawamu lebih dekat ke impian.",
	"Dunia bisa berubah lewat satu buku yang dibaca seseorang.",
	"Pelan tapi pasti, kamu semakin hebat dengan membaca.",
	"Membaca membuatmu bertumbuh dalam diam.",
	"Hari ini baca, esok jadi luar biasa.",
	"Kamu sudah lebih baik dari kemarin. Teruskan!",
	"Ilmu itu cahaya. Baca terus dan bersinarlah.",
	"Buku adalah investasi terbaik untuk masa depanmu.",
	"Langkah kecilmu hari ini adalah awal perubahan besar.",
	"A chapter a day keeps ignorance away.",
	"Feed your soul with words that matter.",
	"Your future self will thank you for reading today.",
	"One more book, one more reason to grow.",
	"In books we find escape, wisdom, and power.",
	"You don't just finish a book—you become a part of it.",
	"Books shape minds that shape the world.",
	"Read like your dreams depend on it—because they do.",
	"Every finished book is a badge of honor.",
	"The joy of reading is the reward itself.",
	"Unlock your next level—one book at a time.",
	"The more you turn pages, the more you turn life around.",
	"Grow your mindset, one story at a time.",
	"Books are quiet mentors. Let them guide you.",
	"Reading is proof you're committed to yourself.",
	"Every sentence read is an investment in clarity.",
	"Success starts with curiosity—and curiosity loves books.",
	"Read often. Speak wisely.",
	"Wisdom isn't born. It's read, page by page.",
	"Buku tak hanya dibaca, tapi dirasakan.",
	"Setiap buku punya pesan khusus untukmu.",
	"Semakin kamu membaca, semakin kamu bebas.",
	"Ilmu tidak akan berat dibawa, justru meringankan hidup.",
	"Membaca membuatmu peka terhadap dunia.",
	"Hidup penuh warna dengan kata-kata dari buku.",
	"Buku adalah kendaraan waktu. Baca dan jelajahi!",
	"Satu paragraf bisa mengubah arah hidupmu.",
	"Jangan remehkan satu halaman. Itu bisa jadi awal segalanya.",
	"Bacaan ringan hari ini, pemikiran mendalam esok hari.",
	"Kata demi kata, kamu membangun versi terbaik dirimu.",
	"Buku menyimpan kekuatan yang tak terlihat mata.",
	"Baca bukan karena wajib, tapi karena kamu layak untuk tahu lebih.",
	"Pengetahuan adalah bentuk cinta tertinggi pada diri sendiri.",
	"Semangatmu luar biasa! Teruskan jejak membacamu.",
	"Membaca tak pernah sia-sia, meski satu kalimat sehari.",
	"Dengan membaca, kamu membangun masa depanmu diam-diam.",
	"Jadikan membaca sebagai hadiah untuk dirimu sendiri.",
	"Bacaan yang bagus akan menemukanmu di saat yang tepat.",
}

// RandomQuote picks a quote uniformly. A nil r uses the package generator.
func RandomQuote(r *rand.Rand) string {
	if len(MotivationalQuotes) == 0 {
		return ""
	}
	if r == nil {
		return MotivationalQuotes[rand.IntN(len(MotivationalQuotes))]
	}
	return MotivationalQuotes[r.IntN(len(MotivationalQuotes))]
}

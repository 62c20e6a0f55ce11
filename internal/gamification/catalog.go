package gamification

import (
	"fmt"
	"sort"

	"github.com/gosimple/slug"
)

// BadgeType groups catalog entries.
type BadgeType string

const (
	BadgeTypeGenre        BadgeType = "genre"
	BadgeTypeMilestone    BadgeType = "milestone"
	BadgeTypeStreak       BadgeType = "streak"
	BadgeTypeReadingStyle BadgeType = "reading_style"
)

// Metric names the aggregate counter a badge target is compared with.
type Metric string

const (
	MetricGenreCompleted  Metric = "genre_completed"
	MetricBooksCompleted  Metric = "books_completed"
	MetricPagesRead       Metric = "pages_read"
	MetricStreak          Metric = "streak"
	MetricMorningSessions Metric = "morning_sessions"
	MetricNightSessions   Metric = "night_sessions"
	MetricWeekendSessions Metric = "weekend_sessions"
)

// MasterBadge is a static catalog entry. It is never persisted; unlock rows
// reference it by ID.
type MasterBadge struct {
	ID          string    `json:"id"`
	Type        BadgeType `json:"type"`
	Name        string    `json:"name"`
	Tier        int       `json:"tier"`
	Target      int64     `json:"target"`
	RewardXP    int64     `json:"reward_xp"`
	Description string    `json:"description"`
	Metric      Metric    `json:"metric"`
	Genre       string    `json:"genre,omitempty"`
}

// Catalog is an immutable, ordered set of master badges.
type Catalog struct {
	badges []MasterBadge
	byID   map[string]int
}

// NewCatalog indexes badges. Duplicate IDs are rejected.
func NewCatalog(badges []MasterBadge) (*Catalog, error) {
	c := &Catalog{
		badges: make([]MasterBadge, len(badges)),
		byID:   make(map[string]int, len(badges)),
	}
	copy(c.badges, badges)
	for i, b := range c.badges {
		if b.ID == "" {
			return nil, fmt.Errorf("badge %q has no id", b.Name)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate badge id %q", b.ID)
		}
		c.byID[b.ID] = i
	}
	return c, nil
}

// All returns a copy of every badge in catalog order.
func (c *Catalog) All() []MasterBadge {
	out := make([]MasterBadge, len(c.badges))
	copy(out, c.badges)
	return out
}

// Len returns the number of badges.
func (c *Catalog) Len() int { return len(c.badges) }

// ByID looks up a badge by its stable id.
func (c *Catalog) ByID(id string) (MasterBadge, bool) {
	i, ok := c.byID[id]
	if !ok {
		return MasterBadge{}, false
	}
	return c.badges[i], true
}

// ByType returns the badges of one type, in catalog order.
func (c *Catalog) ByType(t BadgeType) []MasterBadge {
	var out []MasterBadge
	for _, b := range c.badges {
		if b.Type == t {
			out = append(out, b)
		}
	}
	return out
}

// Genres lists the distinct genres that have badges, sorted.
func (c *Catalog) Genres() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, b := range c.badges {
		if b.Type != BadgeTypeGenre {
			continue
		}
		if _, ok := seen[b.Genre]; ok {
			continue
		}
		seen[b.Genre] = struct{}{}
		out = append(out, b.Genre)
	}
	sort.Strings(out)
	return out
}

type genreTrack struct {
	name   string
	titles [5]string
}

var (
	genreTierTargets = [5]int64{1, 5, 15, 30, 50}
	genreTierRewards = [5]int64{25, 75, 300, 750, 1500}
)

var genreTracks = []genreTrack{
	{"Fantasi", [5]string{"Penjelajah Dunia Fantasi", "Pendekar Fantasi", "Penguasa Alam Magis", "Arsitek Dunia Khayalan", "Legenda Fantasi Abadi"}},
	{"Sci-Fi", [5]string{"Penjelajah Galaksi", "Navigator Antariksa", "Ahli Teknologi Masa Depan", "Arsitek Peradaban Futuristik", "Legenda Sains Fiksi"}},
	{"Romance", [5]string{"Pecinta Awal", "Penikmat Cerita Cinta", "Perangkai Romansa", "Ahli Hati", "Legenda Cinta Sejati"}},
	{"Misteri", [5]string{"Pembaca Misteri Pemula", "Pencari Petunjuk", "Detektif Imajinatif", "Master Intrik", "Legenda Misteri Abadi"}},
	{"Thriller", [5]string{"Pemburu Ketegangan", "Penggemar Suspense", "Ahli Thriller", "Master Adrenalin", "Legenda Ketegangan"}},
	{"Horror", [5]string{"Pemberani Pemula", "Pencari Ketakutan", "Penikmat Horor", "Master Ketakutan", "Legenda Teror"}},
	{"Drama", [5]string{"Penikmat Emosi", "Pencinta Drama", "Ahli Konflik Manusia", "Master Dramatik", "Legenda Drama Kehidupan"}},
	{"Komedi", [5]string{"Pencari Tawa", "Penikmat Humor", "Ahli Komedi", "Master Kelucuan", "Legenda Penghibur"}},
	{"Sastra", [5]string{"Apresiator Sastra", "Pencinta Karya Sastra", "Penikmat Prosa Indah", "Master Sastra", "Legenda Kesusastraan"}},
	{"Young Adult", [5]string{"Pembaca Muda", "Penikmat YA", "Ahli Cerita Remaja", "Master Youth Literature", "Legenda Sastra Muda"}},
	{"Dystopia", [5]string{"Pengamat Masa Depan", "Pencinta Dunia Kelam", "Ahli Distopia", "Master Dunia Alternatif", "Legenda Peradaban Kelam"}},
	{"Historical Fiction", [5]string{"Penjelajah Sejarah", "Pencinta Fiksi Historis", "Ahli Narasi Masa Lalu", "Master Sejarah Imajinatif", "Legenda Fiksi Historis"}},
	{"Adventure", [5]string{"Pencari Petualangan", "Penjelajah Aksi", "Ahli Petualangan", "Master Adventure", "Legenda Petualang"}},
	{"Western", [5]string{"Koboi Pemula", "Penunggang Kuda", "Ahli Wild West", "Master Frontier", "Legenda Koboi"}},
	{"Crime", [5]string{"Pengamat Kejahatan", "Analis Kriminal", "Ahli Crime Story", "Master Criminal Mind", "Legenda Crime Fighter"}},
	{"Supernatural", [5]string{"Pencari Gaib", "Penikmat Supernatural", "Ahli Dunia Gaib", "Master Paranormal", "Legenda Supernatural"}},
	{"Urban Fantasy", [5]string{"Penjelajah Kota Magis", "Navigator Urban Magic", "Ahli Fantasi Modern", "Master Urban Fantasy", "Legenda Kota Magis"}},
	{"Steampunk", [5]string{"Penjelajah Era Uap", "Mekanik Victorian", "Ahli Steampunk", "Master Teknologi Uap", "Legenda Era Mesin"}},
	{"Cyberpunk", [5]string{"Hacker Pemula", "Navigator Cyber", "Ahli Cyberpunk", "Master Digital Dystopia", "Legenda Cyber World"}},
	{"Post-Apocalyptic", [5]string{"Survivor Pemula", "Penjelajah Reruntuhan", "Ahli Post-Apocalypse", "Master Wasteland", "Legenda Survivor"}},
	{"Space Opera", [5]string{"Pilot Antariksa", "Kapten Galaksi", "Ahli Space Opera", "Master Cosmic Story", "Legenda Galactic"}},
	{"Alternate History", [5]string{"Peneliti Timeline", "Navigator Alternatif", "Ahli Sejarah Alternatif", "Master Timeline", "Legenda Alternate Reality"}},
	{"Fairy Tale", [5]string{"Pencinta Dongeng", "Penikmat Fairy Tale", "Ahli Cerita Peri", "Master Fairy Tale", "Legenda Dongeng"}},
	{"Superhero", [5]string{"Fan Superhero", "Pengagum Pahlawan", "Ahli Superhero", "Master Hero Story", "Legenda Pahlawan"}},
	{"Military Fiction", [5]string{"Rekrut Literasi", "Prajurit Buku", "Ahli Military Fiction", "Master War Story", "Legenda Perang"}},
	{"Spy/Espionage", [5]string{"Agen Pemula", "Mata-mata Buku", "Ahli Espionage", "Master Spy Story", "Legenda Secret Agent"}},
	{"Filsafat", [5]string{"Perenung Sunyi", "Penjelajah Akal", "Filsuf Sejati", "Arsitek Pemikiran Abadi", "Legenda Filsafat"}},
	{"Self-Improvement", [5]string{"Pembentuk Diri Pemula", "Pengembang Potensi", "Arsitek Diri Sejati", "Guru Transformasi Hidup", "Legenda Perubahan Diri"}},
	{"Sejarah", [5]string{"Penjelajah Waktu", "Penelusur Masa Lalu", "Ahli Kronik", "Arkeolog Literasi", "Legenda Historis"}},
	{"Biografi", [5]string{"Pengagum Tokoh", "Penelusur Kehidupan", "Penggali Inspirasi", "Sejarawan Pribadi", "Legenda Kehidupan"}},
	{"Parenting", [5]string{"Penuntun Awal", "Penyayang Anak", "Pengasuh Bijak", "Ahli Pola Asuh", "Legenda Keluarga"}},
	{"Psikologi", [5]string{"Pengamat Jiwa", "Peneliti Perilaku", "Ahli Psikologi", "Master Pikiran Manusia", "Legenda Psikologi"}},
	{"Bisnis", [5]string{"Pebisnis Pemula", "Pengusaha Muda", "Ahli Strategi Bisnis", "Master Entrepreneurship", "Legenda Bisnis"}},
	{"Kesehatan", [5]string{"Pencari Hidup Sehat", "Penikmat Wellness", "Ahli Kesehatan", "Master Hidup Sehat", "Legenda Kesehatan"}},
	{"Sains", [5]string{"Penasaran Sains", "Peneliti Alam", "Ahli Pengetahuan", "Master Sains", "Legenda Ilmu Pengetahuan"}},
	{"Teknologi", [5]string{"Penjelajah Digital", "Penikmat Teknologi", "Ahli Tech", "Master Teknologi", "Legenda Era Digital"}},
	{"Keuangan", [5]string{"Pengelola Uang Pemula", "Perencana Keuangan", "Ahli Finansial", "Master Investasi", "Legenda Keuangan"}},
	{"Spiritualitas", [5]string{"Pencari Makna", "Penjelajah Spiritual", "Ahli Kebatinan", "Master Spiritualitas", "Legenda Pencerahan"}},
	{"Travel", [5]string{"Penjelajah Dunia", "Pelancong Buku", "Ahli Petualangan", "Master Traveling", "Legenda Penjelajah"}},
	{"Kuliner", [5]string{"Pencinta Makanan", "Penikmat Kuliner", "Ahli Rasa", "Master Kuliner", "Legenda Gastronomi"}},
	{"Politik", [5]string{"Pengamat Politik", "Analis Kebijakan", "Ahli Politik", "Master Political Science", "Legenda Politik"}},
	{"Ekonomi", [5]string{"Peneliti Ekonomi", "Analis Pasar", "Ahli Ekonomi", "Master Economics", "Legenda Ekonomi"}},
	{"Sosiologi", [5]string{"Pengamat Masyarakat", "Peneliti Sosial", "Ahli Sosiologi", "Master Social Science", "Legenda Sosiologi"}},
	{"Antropologi", [5]string{"Peneliti Budaya", "Etnograf Pemula", "Ahli Antropologi", "Master Cultural Studies", "Legenda Antropologi"}},
	{"Lingkungan", [5]string{"Pecinta Alam", "Aktivis Hijau", "Ahli Lingkungan", "Master Environmental", "Legenda Green Warrior"}},
	{"Seni", [5]string{"Apresiator Seni", "Penikmat Karya Seni", "Ahli Seni", "Master Arts", "Legenda Seniman"}},
	{"Puisi", [5]string{"Pemungut Kata", "Penikmat Larik", "Penyair Dalam Hati", "Perajut Simfoni Kata", "Legenda Puisi"}},
	{"Esai", [5]string{"Pemula Logika", "Penelaah Fakta", "Penulis Gagasan", "Arsitek Pemikiran", "Legenda Narasi Realita"}},
	{"Manga/Komik", [5]string{"Pembaca Visual", "Penikmat Komik", "Ahli Cerita Bergambar", "Master Manga", "Legenda Visual Storytelling"}},
	{"Anak-anak", [5]string{"Pembaca Cilik", "Penikmat Cerita Anak", "Ahli Literasi Anak", "Master Children's Book", "Legenda Sastra Anak"}},
	{"Religi", [5]string{"Pencari Hidayah", "Penikmat Kitab", "Ahli Teks Suci", "Master Spiritual Text", "Legenda Keagamaan"}},
	{"Akademik", [5]string{"Mahasiswa Literasi", "Peneliti Pemula", "Ahli Akademik", "Master Riset", "Legenda Scholastic"}},
	{"Ensiklopedia", [5]string{"Kolektor Pengetahuan", "Pencinta Referensi", "Ahli Ensiklopedia", "Master Pengetahuan Umum", "Legenda Ensiklopedis"}},
	{"Memoir", [5]string{"Pencinta Kisah Nyata", "Penikmat Memoir", "Ahli Life Story", "Master Personal Narrative", "Legenda Memoir"}},
	{"True Crime", [5]string{"Pengamat Kasus", "Analis Kejahatan Nyata", "Ahli True Crime", "Master Criminal Case", "Legenda True Crime"}},
	{"Antologi", [5]string{"Kolektor Cerita", "Penikmat Antologi", "Ahli Kumpulan Cerita", "Master Collection", "Legenda Antologi"}},
	{"Graphic Novel", [5]string{"Pembaca Grafis", "Penikmat Graphic Novel", "Ahli Visual Literature", "Master Graphic Story", "Legenda Graphic Novel"}},
	{"Light Novel", [5]string{"Fan Light Novel", "Penikmat LN", "Ahli Light Novel", "Master LN Culture", "Legenda Light Novel"}},
}

var fixedBadges = []MasterBadge{
	{ID: "milestone_books_3", Type: BadgeTypeMilestone, Name: "Pembaca Pemula", Tier: 1, Target: 3, RewardXP: 50, Description: "Selesaikan 3 buku", Metric: MetricBooksCompleted},
	{ID: "milestone_books_10", Type: BadgeTypeMilestone, Name: "Pembaca Serius", Tier: 2, Target: 10, RewardXP: 200, Description: "Selesaikan 10 buku", Metric: MetricBooksCompleted},
	{ID: "milestone_books_25", Type: BadgeTypeMilestone, Name: "Kolektor Buku", Tier: 3, Target: 25, RewardXP: 600, Description: "Selesaikan 25 buku", Metric: MetricBooksCompleted},
	{ID: "milestone_books_50", Type: BadgeTypeMilestone, Name: "Pustakawan Sejati", Tier: 4, Target: 50, RewardXP: 500, Description: "Selesaikan 50 buku", Metric: MetricBooksCompleted},
	{ID: "milestone_books_100", Type: BadgeTypeMilestone, Name: "Legenda Seratus Buku", Tier: 5, Target: 100, RewardXP: 1000, Description: "Selesaikan 100 buku", Metric: MetricBooksCompleted},

	{ID: "milestone_pages_1000", Type: BadgeTypeMilestone, Name: "Seribu Halaman", Tier: 1, Target: 1000, RewardXP: 100, Description: "Baca 1.000 halaman", Metric: MetricPagesRead},
	{ID: "milestone_pages_5000", Type: BadgeTypeMilestone, Name: "Lima Ribu Halaman", Tier: 2, Target: 5000, RewardXP: 500, Description: "Baca 5.000 halaman", Metric: MetricPagesRead},
	{ID: "milestone_pages_10000", Type: BadgeTypeMilestone, Name: "Sepuluh Ribu Halaman", Tier: 3, Target: 10000, RewardXP: 1000, Description: "Baca 10.000 halaman", Metric: MetricPagesRead},

	{ID: "streak_3", Type: BadgeTypeStreak, Name: "Langkah Awal", Tier: 1, Target: 3, RewardXP: 20, Description: "Membaca 3 hari berturut-turut", Metric: MetricStreak},
	{ID: "streak_7", Type: BadgeTypeStreak, Name: "Pahlawan Mingguan", Tier: 2, Target: 7, RewardXP: 60, Description: "Membaca 7 hari berturut-turut", Metric: MetricStreak},
	{ID: "streak_30", Type: BadgeTypeStreak, Name: "Bintang Disiplin", Tier: 3, Target: 30, RewardXP: 400, Description: "Membaca 30 hari berturut-turut", Metric: MetricStreak},
	{ID: "streak_100", Type: BadgeTypeStreak, Name: "Legenda Konsistensi", Tier: 4, Target: 100, RewardXP: 2000, Description: "Membaca 100 hari berturut-turut", Metric: MetricStreak},

	{ID: "reading_morning", Type: BadgeTypeReadingStyle, Name: "Pembaca Pagi", Tier: 1, Target: 5, RewardXP: 200, Description: "Membaca antara jam 06.00 dan 10.00 sebanyak 5 kali", Metric: MetricMorningSessions},
	{ID: "reading_night", Type: BadgeTypeReadingStyle, Name: "Burung Hantu Malam", Tier: 1, Target: 5, RewardXP: 200, Description: "Membaca antara jam 22.00 dan 06.00 sebanyak 5 kali", Metric: MetricNightSessions},
	{ID: "reading_weekend", Type: BadgeTypeReadingStyle, Name: "Pembaca Akhir Pekan", Tier: 1, Target: 5, RewardXP: 200, Description: "Membaca di akhir pekan sebanyak 5 kali", Metric: MetricWeekendSessions},
}

// GenreBadgeID builds the stable id of a genre tier badge.
func GenreBadgeID(genre string, tier int) string {
	return fmt.Sprintf("genre_%s_%d", slug.Make(genre), tier)
}

func genreBadges() []MasterBadge {
	out := make([]MasterBadge, 0, len(genreTracks)*5)
	for _, track := range genreTracks {
		for i, title := range track.titles {
			tier := i + 1
			out = append(out, MasterBadge{
				ID:          GenreBadgeID(track.name, tier),
				Type:        BadgeTypeGenre,
				Name:        fmt.Sprintf("%s Lv.%d", track.name, tier),
				Tier:        tier,
				Target:      genreTierTargets[i],
				RewardXP:    genreTierRewards[i],
				Description: title,
				Metric:      MetricGenreCompleted,
				Genre:       track.name,
			})
		}
	}
	return out
}

// DefaultCatalog is the built-in badge set.
var DefaultCatalog = mustCatalog(append(genreBadges(), fixedBadges...))

func mustCatalog(badges []MasterBadge) *Catalog {
	c, err := NewCatalog(badges)
	if err != nil {
		panic(err)
	}
	return c
}

package catalog

import "github.com/sidirok-cf-server/internal/domain"

var symptoms = []domain.Symptom{
	{ID: "G01", Code: "G01", Name: "Batuk berkepanjangan lebih dari 3 minggu", Description: "Batuk terus menerus yang tidak kunjung sembuh selama lebih dari 3 minggu", Category: "respiratory", MB: 0.8, MD: 0.1},
	{ID: "G02", Code: "G02", Name: "Batuk berdarah (hemoptisis)", Description: "Mengeluarkan darah saat batuk", Category: "respiratory", MB: 0.9, MD: 0.05},
	{ID: "G03", Code: "G03", Name: "Sesak napas (dispnea)", Description: "Kesulitan bernapas atau napas terasa berat", Category: "respiratory", MB: 0.85, MD: 0.1},
	{ID: "G04", Code: "G04", Name: "Mengi (wheezing)", Description: "Suara siulan saat bernapas", Category: "respiratory", MB: 0.75, MD: 0.15},
	{ID: "G05", Code: "G05", Name: "Produksi dahak berlebihan", Description: "Mengeluarkan lendir dalam jumlah banyak", Category: "respiratory", MB: 0.7, MD: 0.15},
	{ID: "G06", Code: "G06", Name: "Nyeri dada persisten", Description: "Rasa sakit di area dada yang terus menerus", Category: "pain", MB: 0.85, MD: 0.1},
	{ID: "G07", Code: "G07", Name: "Nyeri dada menjalar ke lengan kiri", Description: "Nyeri dada yang menyebar ke lengan kiri", Category: "pain", MB: 0.95, MD: 0.02},
	{ID: "G08", Code: "G08", Name: "Sakit tenggorokan kronis", Description: "Rasa sakit di tenggorokan yang berlangsung lama", Category: "pain", MB: 0.8, MD: 0.1},
	{ID: "G09", Code: "G09", Name: "Nyeri saat menelan (odinofagia)", Description: "Rasa sakit saat menelan makanan", Category: "pain", MB: 0.85, MD: 0.08},
	{ID: "G10", Code: "G10", Name: "Sakit kepala parah tiba-tiba", Description: "Sakit kepala hebat yang muncul mendadak", Category: "pain", MB: 0.9, MD: 0.05},
	{ID: "G11", Code: "G11", Name: "Penurunan berat badan drastis", Description: "Kehilangan berat badan signifikan tanpa diet", Category: "systemic", MB: 0.85, MD: 0.1},
	{ID: "G12", Code: "G12", Name: "Kelelahan ekstrem", Description: "Rasa lelah yang sangat berat", Category: "systemic", MB: 0.7, MD: 0.2},
	{ID: "G13", Code: "G13", Name: "Demam tidak dapat dijelaskan", Description: "Suhu tubuh tinggi tanpa penyebab jelas", Category: "systemic", MB: 0.65, MD: 0.2},
	{ID: "G14", Code: "G14", Name: "Keringat malam berlebihan", Description: "Berkeringat sangat banyak saat tidur malam", Category: "systemic", MB: 0.7, MD: 0.15},
	{ID: "G15", Code: "G15", Name: "Kehilangan nafsu makan", Description: "Tidak merasa lapar atau tidak tertarik makan", Category: "systemic", MB: 0.65, MD: 0.2},
	{ID: "G16", Code: "G16", Name: "Jantung berdebar (palpitasi)", Description: "Detak jantung terasa cepat atau tidak teratur", Category: "cardiovascular", MB: 0.8, MD: 0.1},
	{ID: "G17", Code: "G17", Name: "Pembengkakan kaki", Description: "Kaki membengkak karena penumpukan cairan", Category: "cardiovascular", MB: 0.75, MD: 0.15},
	{ID: "G18", Code: "G18", Name: "Keringat dingin", Description: "Berkeringat dengan sensasi dingin", Category: "cardiovascular", MB: 0.85, MD: 0.1},
	{ID: "G19", Code: "G19", Name: "Mual dan muntah", Description: "Perasaan mual yang dapat disertai muntah", Category: "cardiovascular", MB: 0.6, MD: 0.25},
	{ID: "G20", Code: "G20", Name: "Kelemahan pada wajah/lengan/kaki", Description: "Salah satu sisi tubuh terasa lemah", Category: "neurological", MB: 0.95, MD: 0.02},
	{ID: "G21", Code: "G21", Name: "Kesulitan berbicara", Description: "Sulit mengucapkan kata-kata", Category: "neurological", MB: 0.9, MD: 0.05},
	{ID: "G22", Code: "G22", Name: "Gangguan penglihatan mendadak", Description: "Penglihatan kabur secara tiba-tiba", Category: "neurological", MB: 0.85, MD: 0.08},
	{ID: "G23", Code: "G23", Name: "Kehilangan keseimbangan", Description: "Sulit menjaga keseimbangan", Category: "neurological", MB: 0.8, MD: 0.1},
	{ID: "G24", Code: "G24", Name: "Luka mulut tidak sembuh", Description: "Sariawan yang tidak kunjung sembuh", Category: "oral", MB: 0.9, MD: 0.05},
	{ID: "G25", Code: "G25", Name: "Bercak putih/merah di mulut", Description: "Perubahan warna pada gusi atau lidah", Category: "oral", MB: 0.85, MD: 0.08},
	{ID: "G26", Code: "G26", Name: "Suara serak berkepanjangan", Description: "Perubahan suara menjadi serak lebih dari 2 minggu", Category: "oral", MB: 0.85, MD: 0.1},
	{ID: "G27", Code: "G27", Name: "Kesulitan menelan (disfagia)", Description: "Merasa ada hambatan saat menelan", Category: "oral", MB: 0.85, MD: 0.1},
	{ID: "G28", Code: "G28", Name: "Benjolan di leher", Description: "Pembengkakan yang teraba di area leher", Category: "oral", MB: 0.8, MD: 0.12},
	{ID: "G29", Code: "G29", Name: "Disfungsi ereksi", Description: "Kesulitan mencapai atau mempertahankan ereksi", Category: "reproductive", MB: 0.85, MD: 0.1},
	{ID: "G30", Code: "G30", Name: "Penurunan libido", Description: "Berkurangnya minat atau hasrat seksual", Category: "reproductive", MB: 0.75, MD: 0.15},
	{ID: "G31", Code: "G31", Name: "Gangguan kesuburan", Description: "Kesulitan untuk memiliki keturunan", Category: "reproductive", MB: 0.7, MD: 0.2},
	{ID: "G32", Code: "G32", Name: "Pilek berulang", Description: "Hidung berair yang sering kambuh", Category: "respiratory", MB: 0.65, MD: 0.2},
	{ID: "G33", Code: "G33", Name: "Infeksi saluran napas berulang", Description: "Sering mengalami infeksi seperti bronkitis", Category: "respiratory", MB: 0.8, MD: 0.1},
}

var diseases = []domain.Disease{
	{
		ID:          "P1",
		Code:        "P1",
		Name:        "Kanker Paru-paru",
		Description: "Pertumbuhan sel abnormal di paru-paru. Merokok adalah penyebab utama.",
		Probability: 0.85,
		Severity:    domain.SeverityCritical,
		Prevention:  []string{"Berhenti merokok", "Hindari paparan asap rokok", "Konsumsi makanan sehat"},
		Treatment:   []string{"Pembedahan", "Kemoterapi", "Radioterapi", "Imunoterapi"},
		Statistics: map[string]string{
			"mortalityRate":     "80-85%",
			"survivalRate5Year": "15-20%",
		},
	},
	{
		ID:          "P2",
		Code:        "P2",
		Name:        "Kanker Mulut",
		Description: "Kanker di jaringan mulut atau tenggorokan. Tembakau adalah faktor risiko utama.",
		Probability: 0.75,
		Severity:    domain.SeverityHigh,
		Prevention:  []string{"Berhenti merokok", "Batasi alkohol", "Pemeriksaan gigi rutin"},
		Treatment:   []string{"Pembedahan", "Radioterapi", "Kemoterapi"},
		Statistics: map[string]string{
			"mortalityRate":     "40-50%",
			"survivalRate5Year": "50-60%",
		},
	},
	{
		ID:          "P3",
		Code:        "P3",
		Name:        "Kanker Tenggorokan",
		Description: "Tumor ganas di tenggorokan atau kotak suara.",
		Probability: 0.7,
		Severity:    domain.SeverityHigh,
		Prevention:  []string{"Berhenti merokok", "Hindari alkohol berlebihan", "Vaksinasi HPV"},
		Treatment:   []string{"Pembedahan", "Radioterapi", "Kemoterapi"},
		Statistics: map[string]string{
			"mortalityRate":     "35-45%",
			"survivalRate5Year": "55-65%",
		},
	},
	{
		ID:          "P4",
		Code:        "P4",
		Name:        "Serangan Jantung",
		Description: "Infark miokard terjadi ketika aliran darah ke jantung tersumbat.",
		Probability: 0.8,
		Severity:    domain.SeverityCritical,
		Prevention:  []string{"Berhenti merokok", "Olahraga teratur", "Kontrol tekanan darah"},
		Treatment:   []string{"PCI", "Operasi bypass", "Obat pengencer darah"},
		Statistics: map[string]string{
			"mortalityRate":     "25-30%",
			"survivalRate5Year": "70-75%",
		},
	},
	{
		ID:          "P5",
		Code:        "P5",
		Name:        "PPOK",
		Description: "Penyakit paru-paru kronis yang menyebabkan kesulitan bernapas.",
		Probability: 0.85,
		Severity:    domain.SeverityHigh,
		Prevention:  []string{"Berhenti merokok", "Hindari polusi udara", "Vaksinasi flu"},
		Treatment:   []string{"Bronkodilator", "Kortikosteroid", "Terapi oksigen"},
		Statistics: map[string]string{
			"mortalityRate": "Penyebab kematian ke-3",
			"riskIncrease":  "10-13x pada perokok",
		},
	},
	{
		ID:          "P6",
		Code:        "P6",
		Name:        "Stroke",
		Description: "Terjadi ketika suplai darah ke otak terganggu.",
		Probability: 0.75,
		Severity:    domain.SeverityCritical,
		Prevention:  []string{"Berhenti merokok", "Kontrol tekanan darah", "Olahraga teratur"},
		Treatment:   []string{"tPA", "Trombektomi", "Rehabilitasi neurologis"},
		Statistics: map[string]string{
			"mortalityRate":     "20-30%",
			"survivalRate5Year": "50-70%",
		},
	},
	{
		ID:          "P7",
		Code:        "P7",
		Name:        "ISPA",
		Description: "Infeksi saluran pernapasan akut. Perokok lebih rentan.",
		Probability: 0.6,
		Severity:    domain.SeverityModerate,
		Prevention:  []string{"Berhenti merokok", "Cuci tangan teratur", "Vaksinasi flu"},
		Treatment:   []string{"Istirahat cukup", "Banyak minum", "Obat pereda gejala"},
		Statistics: map[string]string{
			"mortalityRate": "Rendah",
			"riskIncrease":  "2-3x pada perokok",
		},
	},
	{
		ID:          "P8",
		Code:        "P8",
		Name:        "Impotensi",
		Description: "Disfungsi ereksi akibat kerusakan pembuluh darah.",
		Probability: 0.7,
		Severity:    domain.SeverityModerate,
		Prevention:  []string{"Berhenti merokok", "Batasi alkohol", "Olahraga teratur"},
		Treatment:   []string{"Obat oral", "Terapi hormon", "Konseling psikologis"},
		Statistics: map[string]string{
			"mortalityRate": "Tidak mengancam jiwa",
			"riskIncrease":  "50% pada perokok",
		},
	},
}

var rules = []domain.Rule{
	// P1 lung cancer
	{ID: "R01", SymptomID: "G01", DiseaseID: "P1", MB: 0.8, MD: 0.1, Weight: 0.9},
	{ID: "R02", SymptomID: "G02", DiseaseID: "P1", MB: 0.95, MD: 0.02, Weight: 1.0},
	{ID: "R03", SymptomID: "G03", DiseaseID: "P1", MB: 0.85, MD: 0.1, Weight: 0.95},
	{ID: "R04", SymptomID: "G06", DiseaseID: "P1", MB: 0.9, MD: 0.08, Weight: 0.95},
	{ID: "R05", SymptomID: "G11", DiseaseID: "P1", MB: 0.85, MD: 0.1, Weight: 0.9},
	{ID: "R06", SymptomID: "G12", DiseaseID: "P1", MB: 0.7, MD: 0.2, Weight: 0.75},
	{ID: "R07", SymptomID: "G13", DiseaseID: "P1", MB: 0.65, MD: 0.2, Weight: 0.7},
	{ID: "R08", SymptomID: "G14", DiseaseID: "P1", MB: 0.75, MD: 0.15, Weight: 0.8},
	{ID: "R09", SymptomID: "G15", DiseaseID: "P1", MB: 0.65, MD: 0.2, Weight: 0.7},
	// P2 oral cancer
	{ID: "R10", SymptomID: "G08", DiseaseID: "P2", MB: 0.75, MD: 0.15, Weight: 0.8},
	{ID: "R11", SymptomID: "G09", DiseaseID: "P2", MB: 0.85, MD: 0.1, Weight: 0.9},
	{ID: "R12", SymptomID: "G11", DiseaseID: "P2", MB: 0.8, MD: 0.12, Weight: 0.85},
	{ID: "R13", SymptomID: "G15", DiseaseID: "P2", MB: 0.65, MD: 0.2, Weight: 0.7},
	{ID: "R14", SymptomID: "G24", DiseaseID: "P2", MB: 0.95, MD: 0.03, Weight: 1.0},
	{ID: "R15", SymptomID: "G25", DiseaseID: "P2", MB: 0.9, MD: 0.05, Weight: 0.95},
	{ID: "R16", SymptomID: "G27", DiseaseID: "P2", MB: 0.85, MD: 0.1, Weight: 0.9},
	{ID: "R17", SymptomID: "G28", DiseaseID: "P2", MB: 0.8, MD: 0.12, Weight: 0.85},
	// P3 throat cancer
	{ID: "R18", SymptomID: "G08", DiseaseID: "P3", MB: 0.8, MD: 0.12, Weight: 0.85},
	{ID: "R19", SymptomID: "G09", DiseaseID: "P3", MB: 0.9, MD: 0.05, Weight: 0.95},
	{ID: "R20", SymptomID: "G11", DiseaseID: "P3", MB: 0.8, MD: 0.12, Weight: 0.85},
	{ID: "R21", SymptomID: "G15", DiseaseID: "P3", MB: 0.65, MD: 0.2, Weight: 0.7},
	{ID: "R22", SymptomID: "G26", DiseaseID: "P3", MB: 0.95, MD: 0.03, Weight: 1.0},
	{ID: "R23", SymptomID: "G27", DiseaseID: "P3", MB: 0.88, MD: 0.08, Weight: 0.92},
	{ID: "R24", SymptomID: "G28", DiseaseID: "P3", MB: 0.82, MD: 0.1, Weight: 0.87},
	// P4 heart attack
	{ID: "R25", SymptomID: "G03", DiseaseID: "P4", MB: 0.8, MD: 0.12, Weight: 0.85},
	{ID: "R26", SymptomID: "G06", DiseaseID: "P4", MB: 0.88, MD: 0.08, Weight: 0.92},
	{ID: "R27", SymptomID: "G07", DiseaseID: "P4", MB: 0.98, MD: 0.01, Weight: 1.0},
	{ID: "R28", SymptomID: "G12", DiseaseID: "P4", MB: 0.7, MD: 0.18, Weight: 0.75},
	{ID: "R29", SymptomID: "G16", DiseaseID: "P4", MB: 0.82, MD: 0.1, Weight: 0.87},
	{ID: "R30", SymptomID: "G17", DiseaseID: "P4", MB: 0.75, MD: 0.15, Weight: 0.8},
	{ID: "R31", SymptomID: "G18", DiseaseID: "P4", MB: 0.92, MD: 0.05, Weight: 0.95},
	{ID: "R32", SymptomID: "G19", DiseaseID: "P4", MB: 0.65, MD: 0.22, Weight: 0.7},
	// P5 COPD
	{ID: "R33", SymptomID: "G01", DiseaseID: "P5", MB: 0.88, MD: 0.08, Weight: 0.92},
	{ID: "R34", SymptomID: "G03", DiseaseID: "P5", MB: 0.95, MD: 0.03, Weight: 1.0},
	{ID: "R35", SymptomID: "G04", DiseaseID: "P5", MB: 0.9, MD: 0.05, Weight: 0.95},
	{ID: "R36", SymptomID: "G05", DiseaseID: "P5", MB: 0.85, MD: 0.1, Weight: 0.9},
	{ID: "R37", SymptomID: "G12", DiseaseID: "P5", MB: 0.7, MD: 0.18, Weight: 0.75},
	{ID: "R38", SymptomID: "G17", DiseaseID: "P5", MB: 0.72, MD: 0.16, Weight: 0.77},
	{ID: "R39", SymptomID: "G33", DiseaseID: "P5", MB: 0.85, MD: 0.1, Weight: 0.9},
	// P6 stroke
	{ID: "R40", SymptomID: "G10", DiseaseID: "P6", MB: 0.92, MD: 0.05, Weight: 0.95},
	{ID: "R41", SymptomID: "G19", DiseaseID: "P6", MB: 0.6, MD: 0.25, Weight: 0.65},
	{ID: "R42", SymptomID: "G20", DiseaseID: "P6", MB: 0.98, MD: 0.01, Weight: 1.0},
	{ID: "R43", SymptomID: "G21", DiseaseID: "P6", MB: 0.95, MD: 0.03, Weight: 0.97},
	{ID: "R44", SymptomID: "G22", DiseaseID: "P6", MB: 0.88, MD: 0.08, Weight: 0.92},
	{ID: "R45", SymptomID: "G23", DiseaseID: "P6", MB: 0.85, MD: 0.1, Weight: 0.9},
	// P7 acute respiratory infection
	{ID: "R46", SymptomID: "G01", DiseaseID: "P7", MB: 0.75, MD: 0.15, Weight: 0.8},
	{ID: "R47", SymptomID: "G03", DiseaseID: "P7", MB: 0.7, MD: 0.18, Weight: 0.75},
	{ID: "R48", SymptomID: "G04", DiseaseID: "P7", MB: 0.72, MD: 0.16, Weight: 0.77},
	{ID: "R49", SymptomID: "G05", DiseaseID: "P7", MB: 0.78, MD: 0.12, Weight: 0.82},
	{ID: "R50", SymptomID: "G08", DiseaseID: "P7", MB: 0.7, MD: 0.18, Weight: 0.75},
	{ID: "R51", SymptomID: "G13", DiseaseID: "P7", MB: 0.65, MD: 0.2, Weight: 0.7},
	{ID: "R52", SymptomID: "G32", DiseaseID: "P7", MB: 0.8, MD: 0.12, Weight: 0.85},
	{ID: "R53", SymptomID: "G33", DiseaseID: "P7", MB: 0.88, MD: 0.08, Weight: 0.92},
	// P8 erectile dysfunction
	{ID: "R54", SymptomID: "G29", DiseaseID: "P8", MB: 0.95, MD: 0.03, Weight: 1.0},
	{ID: "R55", SymptomID: "G30", DiseaseID: "P8", MB: 0.85, MD: 0.1, Weight: 0.9},
	{ID: "R56", SymptomID: "G31", DiseaseID: "P8", MB: 0.75, MD: 0.15, Weight: 0.8},
}

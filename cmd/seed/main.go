package main

import (
	"context"
	"log"
	"os"
	"time"

	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/pkg/database"
	"sahayak-be/pkg/eligibility"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/scheme"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	repo := uowFactory.NewUnitOfWork(ctx).SchemeRepository()

	log.Println("Seeding scheme catalog...")

	seeded, skipped := 0, 0
	for _, snap := range schemeFixtures() {
		if err := snap.Validate(); err != nil {
			log.Fatalf("Error: fixture %s is invalid: %v", snap.ID, err)
		}
		if err := repo.Create(ctx, snap); err != nil {
			log.Printf("Skip %s: %v", snap.ID, err)
			skipped++
			continue
		}
		log.Printf("Seeded %s (%s)", snap.ID, snap.Name.In(i18n.English))
		seeded++
	}

	log.Printf("✅ Done. %d seeded, %d skipped.", seeded, skipped)
}

func mustText(en, hi string) i18n.Text {
	t, err := i18n.NewText(map[i18n.Language]string{
		i18n.English: en,
		i18n.Hindi:   hi,
	})
	if err != nil {
		log.Fatalf("Error: bad fixture text: %v", err)
	}
	return t
}

func floatPtr(v float64) *float64 { return &v }

func schemeFixtures() []*scheme.Snapshot {
	farmDeadline := time.Date(2027, time.March, 31, 0, 0, 0, 0, time.UTC)

	return []*scheme.Snapshot{
		{
			ID:          "pm-kisan",
			Code:        "PM-KISAN",
			Category:    "agriculture",
			Name:        mustText("PM Kisan Samman Nidhi", "पीएम किसान सम्मान निधि"),
			Description: mustText("Income support of ₹6,000 per year for landholding farmer families, paid in three instalments.", "भूमिधारक किसान परिवारों के लिए प्रति वर्ष ₹6,000 की आय सहायता, तीन किस्तों में।"),
			Criteria: eligibility.Criteria{
				{
					Name:  "adult",
					Field: "age",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Min:  floatPtr(18),
					},
				},
				{
					Name:  "farmer",
					Field: "occupation",
					Predicate: eligibility.Predicate{
						Kind:  eligibility.KindMembership,
						OneOf: []string{"farmer", "cultivator"},
					},
				},
			},
			Steps: []i18n.Text{
				mustText("Visit your nearest Common Service Centre with your Aadhaar card.", "अपने आधार कार्ड के साथ नजदीकी जन सेवा केंद्र जाएं।"),
				mustText("Submit your land record details for verification.", "सत्यापन के लिए अपने भूमि रिकॉर्ड का विवरण जमा करें।"),
				mustText("Link your bank account for direct benefit transfer.", "सीधे लाभ हस्तांतरण के लिए अपना बैंक खाता जोड़ें।"),
			},
			Documents: []i18n.Text{
				mustText("Aadhaar card", "आधार कार्ड"),
				mustText("Land ownership record", "भूमि स्वामित्व रिकॉर्ड"),
				mustText("Bank passbook", "बैंक पासबुक"),
			},
			Deadline: &farmDeadline,
			Version:  1,
		},
		{
			ID:          "ayushman-bharat",
			Code:        "AB-PMJAY",
			Category:    "health",
			Name:        mustText("Ayushman Bharat PM-JAY", "आयुष्मान भारत पीएम-जय"),
			Description: mustText("Health cover of ₹5 lakh per family per year for secondary and tertiary hospitalisation.", "द्वितीयक और तृतीयक अस्पताल देखभाल के लिए प्रति परिवार प्रति वर्ष ₹5 लाख का स्वास्थ्य कवर।"),
			Criteria: eligibility.Criteria{
				{
					Name:  "low_income",
					Field: "annual_income",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Max:  floatPtr(250000),
					},
				},
			},
			Steps: []i18n.Text{
				mustText("Check your family's name on the beneficiary list at a hospital kiosk.", "अस्पताल कियोस्क पर लाभार्थी सूची में अपने परिवार का नाम जांचें।"),
				mustText("Get your Ayushman card issued with identity verification.", "पहचान सत्यापन के साथ अपना आयुष्मान कार्ड बनवाएं।"),
			},
			Documents: []i18n.Text{
				mustText("Aadhaar card", "आधार कार्ड"),
				mustText("Ration card", "राशन कार्ड"),
			},
			Version: 1,
		},
		{
			ID:          "pm-awas-gramin",
			Code:        "PMAY-G",
			Category:    "housing",
			Name:        mustText("PM Awas Yojana Gramin", "पीएम आवास योजना ग्रामीण"),
			Description: mustText("Financial assistance for building a pucca house for rural households without one.", "बिना पक्के घर वाले ग्रामीण परिवारों को पक्का घर बनाने के लिए वित्तीय सहायता।"),
			Criteria: eligibility.Criteria{
				{
					Name:  "adult",
					Field: "age",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Min:  floatPtr(18),
					},
				},
				{
					Name:  "low_income",
					Field: "annual_income",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Max:  floatPtr(120000),
					},
				},
				{
					Name:  "rural",
					Field: "residence",
					Predicate: eligibility.Predicate{
						Kind:  eligibility.KindMembership,
						OneOf: []string{"rural", "village"},
					},
				},
			},
			Steps: []i18n.Text{
				mustText("Apply through your Gram Panchayat office.", "अपने ग्राम पंचायत कार्यालय के माध्यम से आवेदन करें।"),
				mustText("Provide your job card or SECC household details.", "अपना जॉब कार्ड या SECC परिवार विवरण दें।"),
				mustText("Geo-tag the construction site with the block officer.", "ब्लॉक अधिकारी के साथ निर्माण स्थल को जियो-टैग करें।"),
			},
			Documents: []i18n.Text{
				mustText("Aadhaar card", "आधार कार्ड"),
				mustText("MGNREGA job card", "मनरेगा जॉब कार्ड"),
				mustText("Bank passbook", "बैंक पासबुक"),
			},
			Version: 1,
		},
		{
			ID:          "old-age-pension",
			Code:        "IGNOAPS",
			Category:    "pension",
			Name:        mustText("Indira Gandhi National Old Age Pension", "इंदिरा गांधी राष्ट्रीय वृद्धावस्था पेंशन"),
			Description: mustText("Monthly pension for senior citizens from below-poverty-line households.", "गरीबी रेखा से नीचे के परिवारों के वरिष्ठ नागरिकों के लिए मासिक पेंशन।"),
			Criteria: eligibility.Criteria{
				{
					Name:  "senior",
					Field: "age",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Min:  floatPtr(60),
					},
				},
				{
					Name:  "low_income",
					Field: "annual_income",
					Predicate: eligibility.Predicate{
						Kind: eligibility.KindRange,
						Max:  floatPtr(100000),
					},
				},
			},
			Steps: []i18n.Text{
				mustText("Submit the pension application at your block development office.", "अपने ब्लॉक विकास कार्यालय में पेंशन आवेदन जमा करें।"),
				mustText("Complete bank account verification for monthly transfer.", "मासिक हस्तांतरण के लिए बैंक खाता सत्यापन पूरा करें।"),
			},
			Documents: []i18n.Text{
				mustText("Aadhaar card", "आधार कार्ड"),
				mustText("Age proof certificate", "आयु प्रमाण पत्र"),
				mustText("BPL card", "बीपीएल कार्ड"),
			},
			Version: 1,
		},
	}
}

package catalog

import "github.com/healthdesk/healthdesk/internal/models"

// defaultIntents returns the built-in intent catalog. Declaration order matters:
// the classifier scans intents first to last and the first trigger match wins.
func defaultIntents() []models.Intent {
	return []models.Intent{
		{
			Tag:      GreetingIntentTag,
			Patterns: []string{"Hi", "Hello", "Hey", "Good morning", "Good evening", "Hi there"},
			Responses: []string{
				"Hello! I'm your healthcare assistant. How are you feeling today?",
				"Hi there! I'm here to help with your health concerns. What symptoms are you experiencing?",
				"Hello! Welcome to your personal health assistant. How can I help you today?",
			},
		},
		{
			Tag:      "headache",
			Patterns: []string{"I have a headache", "My head hurts", "Headache", "Head pain", "Migraine"},
			Responses: []string{
				"I understand you're experiencing head pain. Can you describe the type of pain? Is it throbbing, sharp, or dull?",
				"Headaches can have various causes. How long have you been experiencing this? Is it accompanied by any other symptoms?",
			},
			FollowUp: []string{"How long have you had this headache?", "Is the pain throbbing or constant?", "Any nausea or sensitivity to light?"},
		},
		{
			Tag:      "fever",
			Patterns: []string{"I have fever", "I'm feeling hot", "High temperature", "Fever", "I'm burning up"},
			Responses: []string{
				"Fever can indicate your body is fighting an infection. Have you taken your temperature? Any other symptoms like chills or body aches?",
				"I'm concerned about your fever. Are you experiencing any other symptoms like cough, sore throat, or body pain?",
			},
			FollowUp: []string{"What's your temperature?", "Any chills or sweating?", "How long have you had the fever?"},
		},
		{
			Tag:      "cough",
			Patterns: []string{"I have a cough", "Coughing", "Dry cough", "Wet cough", "Persistent cough"},
			Responses: []string{
				"Coughs can be concerning. Is it a dry cough or are you bringing up mucus? How long have you been coughing?",
				"I see you have a cough. Is it worse at night or during the day? Any chest pain or difficulty breathing?",
			},
			FollowUp: []string{"Is it a dry or productive cough?", "Any chest pain?", "Difficulty breathing?"},
		},
		{
			Tag:      "stomach_pain",
			Patterns: []string{"Stomach pain", "Abdominal pain", "Belly ache", "My stomach hurts", "Stomach ache"},
			Responses: []string{
				"Abdominal pain can have many causes. Where exactly is the pain located? Is it sharp, cramping, or burning?",
				"I understand you're having stomach discomfort. Is the pain constant or does it come and go? Any nausea or vomiting?",
			},
			FollowUp: []string{"Where is the pain located?", "Is it sharp or cramping?", "Any nausea or vomiting?"},
		},
		{
			Tag:      "chest_pain",
			Patterns: []string{"Chest pain", "My chest hurts", "Heart pain", "Chest discomfort", "Pain in chest"},
			Responses: []string{
				"Chest pain is serious and should be evaluated immediately. Is the pain sharp, crushing, or burning? Any difficulty breathing?",
				"Chest pain requires immediate attention. Are you experiencing shortness of breath, sweating, or pain radiating to your arm?",
			},
			FollowUp: []string{"Is the pain sharp or crushing?", "Any shortness of breath?", "Pain in arm or jaw?"},
		},
		{
			Tag:      "back_pain",
			Patterns: []string{"Back pain", "My back hurts", "Lower back pain", "Upper back pain", "Spine pain"},
			Responses: []string{
				"Back pain is very common. Is it in your upper or lower back? Did you injure it recently or lift something heavy?",
				"I understand you're experiencing back pain. Is it sharp or aching? Does it radiate down your leg?",
			},
			FollowUp: []string{"Upper or lower back?", "Recent injury?", "Pain radiating to legs?"},
		},
		{
			Tag:      "sore_throat",
			Patterns: []string{"Sore throat", "My throat hurts", "Throat pain", "Difficulty swallowing"},
			Responses: []string{
				"Sore throats can be quite uncomfortable. Is it painful to swallow? Any fever or swollen glands?",
				"I see you have throat discomfort. Is it scratchy, burning, or sharp pain? Any white patches?",
			},
			FollowUp: []string{"Painful to swallow?", "Any fever?", "Swollen glands?"},
		},
		{
			Tag:      "nausea",
			Patterns: []string{"I feel nauseous", "Nausea", "Feel sick", "Want to vomit", "Stomach upset"},
			Responses: []string{
				"Nausea can be very uncomfortable. Have you vomited? Any abdominal pain or fever?",
				"I understand you're feeling nauseous. Is it constant or comes in waves? Any recent changes in diet?",
			},
			FollowUp: []string{"Have you vomited?", "Any abdominal pain?", "Recent dietary changes?"},
		},
		{
			Tag:      "dizziness",
			Patterns: []string{"I feel dizzy", "Dizziness", "Lightheaded", "Room spinning", "Balance problems"},
			Responses: []string{
				"Dizziness can have various causes. Do you feel like the room is spinning or more like lightheadedness?",
				"I'm concerned about your dizziness. Any hearing changes, headache, or recent medication changes?",
			},
			FollowUp: []string{"Room spinning or lightheaded?", "Any hearing changes?", "Recent medications?"},
		},
	}
}

// defaultDoctors returns the built-in doctor registry in registry order, which
// is also the fallback recommendation order.
func defaultDoctors() []models.Doctor {
	return []models.Doctor{
		{
			ID:           "1",
			Name:         "Dr. Sarah Johnson",
			Specialty:    "General Medicine",
			Experience:   8,
			Rating:       4.8,
			Availability: []string{"Monday", "Tuesday", "Wednesday", "Friday"},
			MatchScore:   95,
		},
		{
			ID:           "2",
			Name:         "Dr. Michael Chen",
			Specialty:    "Cardiology",
			Experience:   12,
			Rating:       4.9,
			Availability: []string{"Tuesday", "Thursday", "Friday"},
			MatchScore:   88,
		},
		{
			ID:           "3",
			Name:         "Dr. Emily Rodriguez",
			Specialty:    "Neurology",
			Experience:   10,
			Rating:       4.7,
			Availability: []string{"Monday", "Wednesday", "Thursday"},
			MatchScore:   92,
		},
		{
			ID:           "4",
			Name:         "Dr. James Wilson",
			Specialty:    "Orthopedics",
			Experience:   15,
			Rating:       4.8,
			Availability: []string{"Monday", "Tuesday", "Friday"},
			MatchScore:   85,
		},
		{
			ID:           "5",
			Name:         "Dr. Lisa Thompson",
			Specialty:    "Gastroenterology",
			Experience:   9,
			Rating:       4.6,
			Availability: []string{"Wednesday", "Thursday", "Friday"},
			MatchScore:   89,
		},
	}
}

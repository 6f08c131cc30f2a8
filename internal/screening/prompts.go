package screening

import (
	"fmt"
	"strings"
)

func fairEvaluationPrompt(maskedResume, jobDescription string) string {
	return fmt.Sprintf(`Evaluate this candidate PURELY based on skills, experience, and job fit.
DO NOT consider or mention:
- Name, gender, age, or demographics
- School prestige (focus on skills learned)
- Personal appearance or characteristics
- Any non-merit factors

Focus ONLY on:
- Technical skills and proficiency
- Relevant experience and achievements
- Problem-solving abilities
- Project track record
- Job requirement alignment

JOB DESCRIPTION:
%s

CANDIDATE PROFILE (anonymized):
%s

Return JSON:
{
    "merit_score": 0-100,
    "skill_evaluation": {
        "technical_skills": "assessment",
        "experience_quality": "assessment",
        "achievements": "assessment",
        "job_fit": "assessment"
    },
    "strengths": ["specific skill-based strengths"],
    "growth_areas": ["areas for development"],
    "recommendation": "strong_fit/good_fit/potential_fit/not_fit",
    "reasoning": "purely merit-based explanation",
    "fairness_guarantee": "confirmation that evaluation was unbiased"
}`, jobDescription, maskedResume)
}

func biasPrompt(evaluation, resumeContext string) string {
	var b strings.Builder
	b.WriteString("Analyze this candidate evaluation for potential bias.\n")
	b.WriteString("Look for bias signals, unfair assumptions, or non-merit-based reasoning.\n\n")
	b.WriteString("EVALUATION:\n")
	b.WriteString(evaluation)
	b.WriteString("\n\n")
	if resumeContext != "" {
		b.WriteString("RESUME CONTEXT:\n")
		b.WriteString(resumeContext)
		b.WriteString("\n\n")
	}
	b.WriteString(`Return JSON:
{
    "bias_detected": true/false,
    "bias_score": 0-100,
    "bias_signals": [
        {
            "type": "gender/age/name/school/appearance/other",
            "severity": "low/medium/high",
            "evidence": "specific phrase or reasoning",
            "explanation": "why this is potentially biased"
        }
    ],
    "merit_based_score": 0-100,
    "fairness_concerns": ["list of specific concerns"],
    "recommendations": ["how to make evaluation more fair"],
    "clean_evaluation": "rewritten evaluation focused purely on skills and qualifications"
}`)
	return b.String()
}

func comparisonPrompt(originalEval, anonymizedEval string) string {
	return fmt.Sprintf(`Compare these two evaluations of the same candidate:
1. Original evaluation (with personal info)
2. Anonymized evaluation (without personal info)

ORIGINAL EVALUATION:
%s

ANONYMIZED EVALUATION:
%s

Analyze if removing personal information changed the evaluation.

Return JSON:
{
    "bias_impact_detected": true/false,
    "score_difference": <number>,
    "evaluation_consistency": "high/medium/low",
    "key_differences": ["list of major differences"],
    "potential_bias_factors": ["factors that may have influenced original"],
    "fairness_improvement": 0-100,
    "analysis": "detailed explanation"
}`, originalEval, anonymizedEval)
}

func skillExtractionPrompt(resume string) string {
	return fmt.Sprintf(`Extract all technical and professional skills from this resume.
Categorize them and provide details.

RESUME:
%s

Return a JSON response with this exact structure:
{
    "technical_skills": [
        {
            "skill": "skill name",
            "category": "programming/framework/tool/database/cloud/other",
            "proficiency_level": "beginner/intermediate/advanced/expert",
            "evidence_found": true/false
        }
    ],
    "soft_skills": [
        {
            "skill": "skill name",
            "evidence": "brief example from resume"
        }
    ],
    "certifications": ["list of certifications mentioned"],
    "languages": ["programming/spoken languages"],
    "total_skills_count": <number>
}`, resume)
}

func skillVerificationPrompt(resume string, skills []string) string {
	return fmt.Sprintf(`Analyze this resume and verify if the following skills have actual evidence/proof:

SKILLS TO VERIFY: %s

RESUME:
%s

For each skill, check if there are:
- Projects that used this skill
- Work experience mentioning this skill
- Specific achievements with this skill
- Certifications for this skill

Return JSON:
{
    "verified_skills": [
        {
            "skill": "skill name",
            "verified": true/false,
            "confidence_score": 0-100,
            "evidence": ["list of evidence found"],
            "reasoning": "why verified or not verified"
        }
    ],
    "overall_verification_score": 0-100,
    "red_flags": ["list of skills that seem exaggerated or lack evidence"]
}`, strings.Join(skills, ", "), resume)
}

func skillAlignmentPrompt(resume, jobDescription string) string {
	return fmt.Sprintf(`Compare candidate's skills with job requirements and provide detailed skill alignment.

JOB DESCRIPTION:
%s

RESUME:
%s

Analyze and return JSON:
{
    "skill_alignment": [
        {
            "required_skill": "skill from job",
            "candidate_has": true/false,
            "proficiency_match": "excellent/good/partial/none",
            "evidence": "specific example from resume",
            "gap_analysis": "what's missing if not fully aligned"
        }
    ],
    "alignment_score": 0-100,
    "strong_matches": ["skills that perfectly match"],
    "partial_matches": ["skills with some experience"],
    "missing_critical": ["critical skills candidate lacks"],
    "bonus_skills": ["additional skills candidate has"],
    "recommendation": "hire/interview/reject with reasoning"
}`, jobDescription, resume)
}

func matchPrompt(maskedResume, jobDescription string) string {
	return fmt.Sprintf(`Perform a transparent and explainable matching between this candidate and job.
Provide detailed reasoning for EVERY decision and score.
Personal details in the resume are masked; do not speculate about them.

JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

Return a detailed JSON with complete transparency:
{
    "overall_match_score": 0-100,
    "recommendation": "strong_match/good_match/potential_match/weak_match/no_match",
    "skill_alignment": {
        "score": 0-100,
        "matched_skills": [
            {
                "skill": "skill name",
                "match_quality": "excellent/good/partial/none",
                "evidence": "specific example from resume",
                "reasoning": "why this is a match/mismatch"
            }
        ],
        "missing_critical_skills": [
            {"skill": "skill name", "importance": "critical/high/medium", "can_be_learned": true/false}
        ],
        "bonus_skills": ["additional valuable skills candidate brings"],
        "explanation": "overall skill alignment reasoning"
    },
    "experience_alignment": {"score": 0-100, "relevance_score": 0-100, "explanation": "experience alignment reasoning"},
    "education_alignment": {"score": 0-100, "requirement_met": true/false, "reasoning": "how education aligns or doesn't"},
    "project_alignment": {"score": 0-100, "explanation": "project alignment reasoning"},
    "cultural_fit_indicators": {"score": 0-100, "indicators": [], "concerns": [], "explanation": "reasoning"},
    "growth_potential": {"score": 0-100, "reasoning": "why candidate shows growth potential or not"},
    "strengths": [
        {"strength": "specific strength", "evidence": "proof from resume", "value_to_role": "how this helps in job"}
    ],
    "concerns": [
        {"concern": "specific concern", "severity": "critical/high/medium/low", "evidence": "what led to this concern", "mitigation": "possible ways to address"}
    ],
    "transparency_statement": "how this match score was calculated, what factors were considered, and why this recommendation was made",
    "next_steps": {
        "recommendation": "hire/interview/test/reject",
        "reasoning": "why this next step",
        "interview_focus_areas": ["areas to explore in interview if applicable"]
    },
    "fairness_check": {
        "bias_free": true/false,
        "merit_based": true/false,
        "explanation": "confirmation that evaluation was fair and unbiased"
    }
}`, jobDescription, maskedResume)
}

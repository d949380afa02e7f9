package pipeline

import "fmt"

// Prompt builders for each phase. All of them demand fenced YAML output
// with known top-level markers so the parser can recover the payload from
// decorated responses.

func buildJDAnalysisPrompt(jobDescription string) string {
	return fmt.Sprintf(`You are an expert resume writer. Analyze the job description below and identify the key skills, technologies, and short phrases it requires.

**MANDATORY OUTPUT FORMAT:**
Your entire response must be a single YAML code block, and nothing else. Do not add any commentary, explanations, or markdown outside the code block.

Each item must be a single skill, technology, or short phrase (2-5 words max) that is a core requirement or strong preference in the job description. Do not include full sentences, soft skills, or generic statements unless explicitly required. Do not repeat keywords. Divide the list into 'required', 'preferred', and 'nice_to_have' by how crucial each keyword is to the role.

**JOB DESCRIPTION**
%s

**EXAMPLE OUTPUT:**
`+"```yaml"+`
keywords:
  required:
    - 'python'
    - 'machine learning'
  preferred:
    - 'AWS'
    - 'statistical modeling'
  nice_to_have:
    - 'team collaboration'
`+"```"+`

**IMPORTANT: Provide only the analysis. Do not ask questions, suggest next steps, or offer additional services.**`, jobDescription)
}

func buildSkillMappingPrompt(experienceText string) string {
	return fmt.Sprintf(`Below is an account of my experiences. For each keyword you identified in the job description, map it to the strongest concrete evidence in my background, noting whether the match is (i) direct, (ii) partial, or (iii) absent. Do not invent evidence; an honest 'absent' is more useful than a stretch.

**MY EXPERIENCES**
%s

Respond with your mapping as a YAML code block with a top-level 'mapping' key, one entry per keyword, each entry carrying 'match' (direct/partial/absent) and 'evidence' (one sentence naming the specific project or role).`, experienceText)
}

func buildProfilePlanPrompt(profileDraft string) string {
	return fmt.Sprintf(`Using your keyword analysis and evidence mapping, rewrite my profile description so it targets this job. The profile should be concise (up to 90 words), professional, and specific: tying a claim to a concrete technique or project beats broad language. Work keywords in only where they do not dilute specificity.

**CURRENT PROFILE DESCRIPTION**
%s

**MANDATORY OUTPUT FORMAT:**
Respond with the marker line PROFILE_OPTIMIZATION_PLAN: followed by a YAML code block:

PROFILE_OPTIMIZATION_PLAN:
`+"```yaml"+`
profile:
  description: 'New description goes here'
`+"```"+``, profileDraft)
}

func buildBulletPointsPrompt(resumeYAML string) string {
	return fmt.Sprintf(`Here is my current resume draft. Plan bullet-level edits that strengthen alignment with the job description while staying true to the evidence you mapped earlier. For each bullet you would change, give the section, the current text, the proposed text, and the keyword(s) the edit serves. Do not propose edits that overstate my experience.

**RESUME DRAFT**
%s

Respond with your plan as a YAML code block with a top-level 'bullet_edits' key.`, resumeYAML)
}

func buildOptimizerPrompt(resumeYAML, profilePlan, bulletPlan string) string {
	return fmt.Sprintf(`You are an expert resume writer. Apply the profile plan and bullet-edit plan below to the original resume and produce the complete optimized resume.

**PROFILE PLAN**
%s

**BULLET EDIT PLAN**
%s

**ORIGINAL RESUME**
%s

**MANDATORY OUTPUT FORMAT:**
Respond with the marker line FINAL_RESUME_YAML: followed by a single YAML code block containing the full resume. Every string value must be single-quoted. Do not add commentary outside the code block.

FINAL_RESUME_YAML:
`+"```yaml"+`
profile:
  description: '...'
skills:
  - '...'
`+"```"+``, profilePlan, bulletPlan, resumeYAML)
}

func buildValidationPrompt(jobDescription, experienceText, initialSections, editedSections string) string {
	return fmt.Sprintf(`You are a skeptical hiring manager verifying a resume against the candidate's actual experience. Compare the edited resume sections against the initial sections, the candidate's experience account, and the job description. Score how much the edits overstate the candidate's evidenced experience on a 0-100 dishonesty scale, where 0 is fully supported by evidence and 100 is fabricated.

**JOB DESCRIPTION**
%s

**CANDIDATE EXPERIENCE ACCOUNT**
%s

**INITIAL RESUME SECTIONS**
%s

**EDITED RESUME SECTIONS**
%s

**MANDATORY OUTPUT FORMAT:**
`+"```yaml"+`
VALIDATION_RESULTS:
  DISHONESTY_SCORE: <integer 0-100>
  CONCERNS:
    - 'specific claim and why it is unsupported'
`+"```"+``, jobDescription, experienceText, initialSections, editedSections)
}

func buildRefinementPrompt(validatorFeedback string, dishonestyScore int, resumeYAML string) string {
	return fmt.Sprintf(`A validator reviewed the resume below and scored its dishonesty at %d/100. Revise the resume to address every concern while keeping the edits as strong as honesty allows.

**VALIDATOR FEEDBACK**
%s

**CURRENT RESUME**
%s

**MANDATORY OUTPUT FORMAT:**
First a single YAML code block containing the full revised resume, every string value single-quoted. Then the marker line CHANGES_MADE: followed by a YAML list describing each change and which concern it addresses.`, dishonestyScore, validatorFeedback, resumeYAML)
}

func buildFormattingPrompt(resumeYAML, targetKeywords string) string {
	return fmt.Sprintf(`Apply bold emphasis to the resume below: wrap occurrences of the target keywords (and close variants) in \textbf{...} within bullet text and the profile description. Change nothing else: no rewording, no reordering, no added or removed entries. Keys and structure must remain identical.

**TARGET KEYWORDS**
%s

**RESUME**
%s

**MANDATORY OUTPUT FORMAT:**
A single YAML code block containing the full resume with markup applied, every string value single-quoted.`, targetKeywords, resumeYAML)
}

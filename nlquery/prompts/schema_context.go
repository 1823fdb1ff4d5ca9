package prompts

const SchemaContext = `Student Record and Filter Information:

1. Each student record has:
   - name: display name (string)
   - enrollmentNumber: e.g. "CS101", "EE2023-044" (string)
   - email (string)
   - trustScore: integer reputation, may be negative
     * >= 10  Excellent
     * >= 5   Good
     * >= 0   Low
     * < 0    Flagged
   - hostel: current assignment (hostel name + room number), may be missing
   - hostelRequest: pending request for a hostel by name, may be missing

2. Filter object (JSON), every field optional:
   {
     "term":        string,  substring of name or enrollment number
     "pendingOnly": boolean, only students with a pending hostel request
     "unassigned":  boolean, only students without a current hostel
     "hostel":      string,  current or requested hostel name
     "minScore":    integer, inclusive lower bound on trustScore
     "maxScore":    integer, inclusive upper bound on trustScore
   }

3. Rules:
   - Omit fields the question does not mention.
   - "flagged" or "negative score" means maxScore -1.
   - "above N" means minScore N+1, "at least N" means minScore N.
   - "below N" means maxScore N-1, "at most N" means maxScore N.
   - Use hostel names exactly as listed under Known hostels.`
